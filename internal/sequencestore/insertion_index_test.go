package sequencestore

import (
	"regexp"
	"testing"
)

func TestInsertionIndexLookup(t *testing.T) {
	idx := NewInsertionIndex()
	idx.Add(5, "AAC", 0)
	idx.Add(5, "AAC", 2)
	idx.Add(5, "GGT", 1)

	b := idx.Lookup(5, "AAC")
	if b.Cardinality() != 2 || !b.Contains(0) || !b.Contains(2) {
		t.Errorf("Lookup(5, \"AAC\") = %v, want {0,2}", b.ToArray())
	}

	if b := idx.Lookup(5, "CCC"); !b.IsEmpty() {
		t.Errorf("Lookup of unknown text = %v, want empty", b.ToArray())
	}
	if b := idx.Lookup(99, "AAC"); !b.IsEmpty() {
		t.Errorf("Lookup at unknown position = %v, want empty", b.ToArray())
	}
}

func TestInsertionIndexSearch(t *testing.T) {
	idx := NewInsertionIndex()
	idx.Add(5, "AAC", 0)
	idx.Add(5, "AAG", 1)
	idx.Add(5, "GGT", 2)

	pattern := regexp.MustCompile("^AA")
	b := idx.Search(5, pattern)
	if b.Cardinality() != 2 || !b.Contains(0) || !b.Contains(1) {
		t.Errorf("Search(^AA) = %v, want {0,1}", b.ToArray())
	}
}
