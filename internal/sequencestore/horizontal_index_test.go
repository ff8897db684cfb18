package sequencestore

import "testing"

func TestHorizontalCoverageIndexCoveredRegion(t *testing.T) {
	h := NewHorizontalCoverageIndex(10)
	h.AppendCoverage(2, 8, []int{4})
	h.AppendNull()

	if !h.IsCoveredAt(0, 2) {
		t.Error("row 0 should be covered at position 2 (start of region)")
	}
	if h.IsCoveredAt(0, 8) {
		t.Error("row 0 should not be covered at position 8 (end is exclusive)")
	}
	if h.IsCoveredAt(0, 4) {
		t.Error("row 0 should not be covered at position 4 (individually missing)")
	}
	if h.IsCoveredAt(1, 3) {
		t.Error("row 1 (appendNull) should never be covered")
	}
}

func TestIsInCoveredRegion(t *testing.T) {
	h := NewHorizontalCoverageIndex(10)
	h.AppendCoverage(0, 10, nil)
	h.AppendCoverage(5, 10, nil)
	h.AppendNull()

	covered := h.IsInCoveredRegion(2, Covered)
	if covered.Cardinality() != 1 || !covered.Contains(0) {
		t.Errorf("IsInCoveredRegion(2, Covered) = %v, want {0}", covered.ToArray())
	}

	notCovered := h.IsInCoveredRegion(2, NotCovered)
	if notCovered.Cardinality() != 2 || !notCovered.Contains(1) || !notCovered.Contains(2) {
		t.Errorf("IsInCoveredRegion(2, NotCovered) = %v, want {1,2}", notCovered.ToArray())
	}
}
