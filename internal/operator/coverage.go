package operator

import "github.com/nishad/silo/internal/sequencestore"

// IsInCoveredRegion tests, for every row, whether a sequence column's
// aligned position falls within (or outside, under NotCovered) that row's
// covered region, per spec.md §4.A/§4.C.
type IsInCoveredRegion struct {
	Coverage    *sequencestore.HorizontalCoverageIndex
	Position    int
	Mode        sequencestore.CoverageMode
	RowCountVal uint64
}

func (c *IsInCoveredRegion) RowCount() uint64 { return c.RowCountVal }

func (c *IsInCoveredRegion) Evaluate() Result {
	return Owned(c.Coverage.IsInCoveredRegion(c.Position, c.Mode))
}

// Negate flips Covered/NotCovered directly — the "comparator flip on
// IsInCoveredRegion" named in spec.md §4.C — rather than wrapping in
// Complement.
func (c *IsInCoveredRegion) Negate() Operator {
	flipped := sequencestore.Covered
	if c.Mode == sequencestore.Covered {
		flipped = sequencestore.NotCovered
	}
	return &IsInCoveredRegion{
		Coverage:    c.Coverage,
		Position:    c.Position,
		Mode:        flipped,
		RowCountVal: c.RowCountVal,
	}
}
