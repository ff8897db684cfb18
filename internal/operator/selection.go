package operator

import "github.com/nishad/silo/internal/bitmapx"

// CompareOp is the closed set of typed comparisons a Selection predicate
// supports, per spec.md §4.C.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Negate returns the logically inverted comparison operator (used to build
// a Predicate's Inverse so single-predicate Selections can negate
// cheaply).
func (op CompareOp) Negate() CompareOp {
	switch op {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	default:
		return op
	}
}

// Predicate is one typed, NaN/null-aware row test a Selection evaluates.
// Inverse, when non-nil, is the logical negation of Match, enabling
// Selection.Negate's predicate inversion. Filter compilation supplies it
// only for IntEquals; every other compiled Selection leaves it nil.
type Predicate struct {
	Match   func(row uint32) bool
	Inverse func(row uint32) bool
}

// Selection iterates either Child's bitmap, or [0, RowCountVal) if Child is
// nil, keeping rows matching the conjunction of Predicates, per spec.md
// §4.C.
type Selection struct {
	Child       Operator
	Predicates  []Predicate
	RowCountVal uint64
}

func (s *Selection) RowCount() uint64 { return s.RowCountVal }

func (s *Selection) Evaluate() Result {
	result := bitmapx.New()
	matches := func(row uint32) bool {
		for _, p := range s.Predicates {
			if !p.Match(row) {
				return false
			}
		}
		return true
	}

	if s.Child != nil {
		it := s.Child.Evaluate().Bitmap().Iterator()
		for it.HasNext() {
			row := it.Next()
			if matches(row) {
				result.Add(row)
			}
		}
		return Owned(result)
	}

	for row := uint64(0); row < s.RowCountVal; row++ {
		if matches(uint32(row)) {
			result.Add(uint32(row))
		}
	}
	return Owned(result)
}

// Negate inverts a single predicate directly when the Selection scans the
// whole row universe (Child == nil) and that predicate carries an
// Inverse — the "predicate inversion on Selection" of spec.md §4.C. A
// multi-predicate conjunction, or one scoped to a child bitmap, falls back
// to Complement: De Morgan would turn the conjunction into a disjunction
// Selection can't express, and a Child-scoped Selection's complement
// includes rows Child itself excludes.
func (s *Selection) Negate() Operator {
	if s.Child == nil && len(s.Predicates) == 1 && s.Predicates[0].Inverse != nil {
		p := s.Predicates[0]
		return &Selection{
			Predicates:  []Predicate{{Match: p.Inverse, Inverse: p.Match}},
			RowCountVal: s.RowCountVal,
		}
	}
	return &Complement{Child: s, RowCountVal: s.RowCountVal}
}
