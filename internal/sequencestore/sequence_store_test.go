package sequencestore

import (
	"testing"

	"github.com/nishad/silo/internal/alphabet"
)

func encode(t *testing.T, s string) []alphabet.Symbol {
	t.Helper()
	symbols, err := alphabet.Nuc.EncodeString(s)
	if err != nil {
		t.Fatalf("EncodeString(%q) error = %v", s, err)
	}
	return symbols
}

func TestSequenceStoreAppendAndMatch(t *testing.T) {
	ref := encode(t, "ACGT")
	s := NewSequenceStore("main", alphabet.Nuc, ref)

	if err := s.Append(encode(t, "ACGT"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(encode(t, "ACGA"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	s.AppendNull()
	s.Finalize()

	matching := s.SymbolEqualsSet(3, []alphabet.Symbol{alphabet.NucA})
	if matching.Cardinality() != 1 || !matching.Contains(1) {
		t.Errorf("SymbolEqualsSet(3, {A}) = %v, want row {1}", matching.ToArray())
	}

	// HasMutation is a literal NOT(SymbolEquals(ref)), per spec.md §4.A: a
	// row with no observed symbol at this position (row 2, appendNull) does
	// not match SymbolEquals(ref) either, so it is also reported as "has
	// mutation" by the negation.
	mutated := s.HasMutation(3)
	if mutated.Cardinality() != 2 || !mutated.Contains(1) || !mutated.Contains(2) {
		t.Errorf("HasMutation(3) = %v, want rows {1,2}", mutated.ToArray())
	}
}

func TestSequenceStoreFinalizeRewritesLocalReference(t *testing.T) {
	ref := encode(t, "A")
	s := NewSequenceStore("main", alphabet.Nuc, ref)

	// Three rows carry C at position 0, one carries the declared reference
	// A: C should become the new local reference.
	for i := 0; i < 3; i++ {
		if err := s.Append(encode(t, "C"), 0, nil); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := s.Append(encode(t, "A"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	s.Finalize()

	if s.LocalReference[0] != alphabet.NucC {
		t.Errorf("LocalReference[0] = %v, want NucC after majority rewrite", s.LocalReference[0])
	}

	// After rewrite, rows holding the now-minority A symbol should be the
	// ones recorded in the vertical index (as a difference from the new
	// local reference), and querying for A should still find exactly row 3.
	matchingA := s.SymbolEqualsSet(0, []alphabet.Symbol{alphabet.NucA})
	if matchingA.Cardinality() != 1 || !matchingA.Contains(3) {
		t.Errorf("SymbolEqualsSet(0, {A}) after rewrite = %v, want row {3}", matchingA.ToArray())
	}
}

func TestSequenceStoreMissingIsNotCovered(t *testing.T) {
	ref := encode(t, "ACGT")
	s := NewSequenceStore("main", alphabet.Nuc, ref)

	if err := s.Append(encode(t, "ACNT"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	s.Finalize()

	covered := s.Coverage.IsInCoveredRegion(2, Covered)
	if covered.Cardinality() != 0 {
		t.Errorf("position 2 (N) should not be covered, got %v", covered.ToArray())
	}
}

func TestSequenceStoreAmbiguityModes(t *testing.T) {
	ref := encode(t, "A")
	s := NewSequenceStore("main", alphabet.Nuc, ref)

	// Row 0: R (ambiguous for A/G). Row 1: A (exact reference).
	if err := s.Append(encode(t, "R"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(encode(t, "A"), 0, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	s.Finalize()

	// Querying the concrete symbol A: only row 1 literally carries it,
	// under every mode, since A has no ambiguity expansion of its own.
	exact := s.SymbolEquals(0, alphabet.NucA, Exact)
	if exact.Cardinality() != 1 || !exact.Contains(1) {
		t.Errorf("SymbolEquals(A, Exact) = %v, want row {1}", exact.ToArray())
	}

	// Querying the ambiguous symbol R under EXACT matches only rows
	// literally stored as R.
	exactR := s.SymbolEquals(0, alphabet.NucR, Exact)
	if exactR.Cardinality() != 1 || !exactR.Contains(0) {
		t.Errorf("SymbolEquals(R, Exact) = %v, want row {0}", exactR.ToArray())
	}

	// Querying R under UPPER_BOUND broadens to R's own ambiguity expansion
	// {A, G} union {R}: row 1 (literally A) now also matches, since A is a
	// possible resolution of R.
	upperR := s.SymbolEquals(0, alphabet.NucR, UpperBound)
	if upperR.Cardinality() != 2 {
		t.Errorf("SymbolEquals(R, UpperBound) = %v, want both rows", upperR.ToArray())
	}
}

func TestModeFlip(t *testing.T) {
	tests := []struct {
		in   Mode
		want Mode
	}{
		{Exact, Exact},
		{UpperBound, LowerBound},
		{LowerBound, UpperBound},
	}
	for _, tt := range tests {
		if got := tt.in.Flip(); got != tt.want {
			t.Errorf("%v.Flip() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
