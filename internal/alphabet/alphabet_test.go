package alphabet

import "testing"

func TestNucleotideCount(t *testing.T) {
	if Nuc.Count() != 16 {
		t.Errorf("expected 16 nucleotide symbols, got %d", Nuc.Count())
	}
}

func TestAminoAcidCount(t *testing.T) {
	if AA.Count() != 21 {
		t.Errorf("expected 21 amino acid symbols, got %d", AA.Count())
	}
}

func TestNucleotideCharToSymbol(t *testing.T) {
	tests := []struct {
		char rune
		want Symbol
		ok   bool
	}{
		{'-', NucGap, true},
		{'A', NucA, true},
		{'a', NucA, true},
		{'U', NucT, true},
		{'u', NucT, true},
		{'N', NucN, true},
		{'Z', 0, false},
	}
	for _, tt := range tests {
		got, ok := Nuc.CharToSymbol(byte(tt.char))
		if ok != tt.ok {
			t.Errorf("CharToSymbol(%q) ok = %v, want %v", tt.char, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("CharToSymbol(%q) = %v, want %v", tt.char, got, tt.want)
		}
	}
}

func TestNucleotideRoundTrip(t *testing.T) {
	for _, s := range Nuc.Symbols {
		c := Nuc.SymbolToChar(s)
		back, ok := Nuc.CharToSymbol(c)
		if !ok || back != s {
			t.Errorf("round trip failed for symbol %v via char %q", s, c)
		}
	}
}

func TestNucleotideMissingSymbol(t *testing.T) {
	if Nuc.Missing != NucN {
		t.Errorf("expected missing symbol N, got %v", Nuc.Missing)
	}
}

func TestAminoAcidMissingSymbol(t *testing.T) {
	if AA.Missing != AAX {
		t.Errorf("expected missing symbol X, got %v", AA.Missing)
	}
}

func TestAminoAcidStopFoldsToX(t *testing.T) {
	got, ok := AA.CharToSymbol('*')
	if !ok || got != AAX {
		t.Errorf("expected '*' to map to X, got %v, ok=%v", got, ok)
	}
}

func TestValidMutationSymbols(t *testing.T) {
	if !Nuc.IsValidMutation(NucA) {
		t.Error("A should be a valid mutation symbol")
	}
	if Nuc.IsValidMutation(NucR) {
		t.Error("R (ambiguity code) should not be a valid mutation symbol")
	}
	if Nuc.IsValidMutation(NucN) {
		t.Error("N (missing) should not be a valid mutation symbol")
	}
}

func TestAmbiguityExpansion(t *testing.T) {
	exp := Nuc.Expand(NucR)
	want := map[Symbol]bool{NucA: true, NucG: true}
	if len(exp) != len(want) {
		t.Fatalf("expected 2 symbols for R, got %d", len(exp))
	}
	for _, s := range exp {
		if !want[s] {
			t.Errorf("unexpected symbol %v in expansion of R", s)
		}
	}

	// Non-ambiguous symbol expands to itself.
	exp = Nuc.Expand(NucA)
	if len(exp) != 1 || exp[0] != NucA {
		t.Errorf("expected A to expand to itself, got %v", exp)
	}
}

func TestComplement(t *testing.T) {
	comp := Nuc.Complement([]Symbol{NucA, NucC, NucG, NucT})
	if len(comp) != Nuc.Count()-4 {
		t.Errorf("expected %d symbols in complement, got %d", Nuc.Count()-4, len(comp))
	}
	for _, s := range comp {
		if s == NucA || s == NucC || s == NucG || s == NucT {
			t.Errorf("complement should not contain %v", s)
		}
	}
}

func TestEncodeDecodeString(t *testing.T) {
	symbols, err := Nuc.EncodeString("ACGT-N")
	if err != nil {
		t.Fatalf("EncodeString failed: %v", err)
	}
	if len(symbols) != 6 {
		t.Fatalf("expected 6 symbols, got %d", len(symbols))
	}
	back := Nuc.DecodeString(symbols)
	if back != "ACGT-N" {
		t.Errorf("expected round trip ACGT-N, got %q", back)
	}
}

func TestEncodeStringInvalidChar(t *testing.T) {
	_, err := Nuc.EncodeString("ACGTZ")
	if err == nil {
		t.Fatal("expected error for invalid character Z")
	}
}
