package operator

import (
	"sort"

	"github.com/nishad/silo/internal/bitmapx"
)

// Intersection is (⋂ Positive) \ (⋃ Negative), per spec.md §4.C. Evaluate
// sorts the positive operands by ascending cardinality and accumulates
// into the smallest (taking ownership if it is already an owned result),
// then ANDs the rest in, then subtracts the negative operands sorted by
// descending cardinality — the cheapest evaluation order for a chain of
// set operations whose costs scale with the accumulator's size.
type Intersection struct {
	Positive    []Operator
	Negative    []Operator
	RowCountVal uint64
}

func (i *Intersection) RowCount() uint64 { return i.RowCountVal }

func (i *Intersection) Evaluate() Result {
	if len(i.Positive) == 0 {
		if len(i.Negative) == 0 {
			return Owned(bitmapx.NewRange(0, i.RowCountVal))
		}
		neg := evaluateFastUnion(i.Negative)
		return Owned(neg.Flip(0, i.RowCountVal))
	}

	results := make([]Result, len(i.Positive))
	for idx, p := range i.Positive {
		results[idx] = p.Evaluate()
	}
	sort.Slice(results, func(a, b int) bool {
		return results[a].Bitmap().Cardinality() < results[b].Bitmap().Cardinality()
	})

	acc := results[0].IntoOwned()
	for idx := 1; idx < len(results); idx++ {
		acc.And(results[idx].Bitmap())
	}

	if len(i.Negative) > 0 {
		negResults := make([]Result, len(i.Negative))
		for idx, n := range i.Negative {
			negResults[idx] = n.Evaluate()
		}
		sort.Slice(negResults, func(a, b int) bool {
			return negResults[a].Bitmap().Cardinality() > negResults[b].Bitmap().Cardinality()
		})
		for _, nr := range negResults {
			acc.AndNot(nr.Bitmap())
		}
	}

	return Owned(acc)
}

// Negate applies De Morgan's law: NOT((⋂pos) \ (⋃neg)) = (⋃ NOT(pos_i)) ∪
// (⋃ neg_i), where the negative operands are carried over unchanged since
// they were already the "subtracted" side.
func (i *Intersection) Negate() Operator {
	negated := make([]Operator, 0, len(i.Positive)+len(i.Negative))
	for _, p := range i.Positive {
		negated = append(negated, p.Negate())
	}
	negated = append(negated, i.Negative...)
	return &Union{Children: negated, RowCountVal: i.RowCountVal}
}

// Union is the fast roaring union of every child, per spec.md §4.C.
type Union struct {
	Children    []Operator
	RowCountVal uint64
}

func (u *Union) RowCount() uint64 { return u.RowCountVal }

func (u *Union) Evaluate() Result {
	if len(u.Children) == 0 {
		return Owned(bitmapx.New())
	}
	return Owned(evaluateFastUnion(u.Children))
}

// Negate applies De Morgan's law: NOT(⋃ children) = ⋂ NOT(children_i).
func (u *Union) Negate() Operator {
	negated := make([]Operator, len(u.Children))
	for idx, c := range u.Children {
		negated[idx] = c.Negate()
	}
	return &Intersection{Positive: negated, RowCountVal: u.RowCountVal}
}

func evaluateFastUnion(ops []Operator) *bitmapx.Bitmap {
	bitmaps := make([]*bitmapx.Bitmap, len(ops))
	for i, o := range ops {
		bitmaps[i] = o.Evaluate().Bitmap()
	}
	return bitmapx.FastUnion(bitmaps...)
}
