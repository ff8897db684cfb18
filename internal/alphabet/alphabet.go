// Package alphabet defines the two closed symbol enums SILO indexes
// sequence columns over: Nucleotide (16 symbols) and AminoAcid (21
// symbols), per spec.md §6 ("Symbol alphabets (bit-exact)").
package alphabet

import "fmt"

// Symbol is a small dense index into an alphabet's symbol table. Its
// numeric value is stable within one alphabet and is used directly as an
// array index (e.g. the per-position symbol bitmap array), so it must stay
// contiguous starting at zero.
type Symbol uint8

// Alphabet is the tagged-enum contract both Nucleotide and AminoAcid
// satisfy. It is implemented as one struct type holding each alphabet's
// lookup tables, with one package-level value per alphabet, rather than an
// interface with two implementations, matching how the
// teacher dispatches on closed string/int constants (e.g.
// internal/search.SearchBackend kinds) instead of building a small
// interface hierarchy for a fixed, closed set.
type Alphabet struct {
	Name    string
	Symbols []Symbol
	// CharToSymbol maps every accepted input character (case-insensitively
	// normalized where the alphabet allows it) to its Symbol.
	charToSymbol map[byte]Symbol
	// SymbolToChar is the canonical single-character representation.
	symbolToChar map[Symbol]byte
	// Missing is the alphabet's "missing data" symbol (N for nucleotides, X
	// for amino acids).
	Missing Symbol
	// ValidMutationSymbols excludes ambiguity codes: a mutation call must
	// resolve to one of these.
	ValidMutationSymbols []Symbol
	// Ambiguity maps an ambiguity symbol to the set of concrete symbols it
	// stands for, used by the UPPER_BOUND ambiguity mode of spec.md §4.A.
	// Concrete (non-ambiguous) symbols are absent from this map.
	Ambiguity map[Symbol][]Symbol
}

// Nucleotide symbols, in the declared order of spec.md §6: GAP(-), A, C, G,
// T, R, Y, S, W, K, M, B, D, H, V, N.
const (
	NucGap Symbol = iota
	NucA
	NucC
	NucG
	NucT
	NucR
	NucY
	NucS
	NucW
	NucK
	NucM
	NucB
	NucD
	NucH
	NucV
	NucN
)

// Nuc is the Nucleotide alphabet.
var Nuc = buildNucleotide()

func buildNucleotide() *Alphabet {
	symbols := []Symbol{NucGap, NucA, NucC, NucG, NucT, NucR, NucY, NucS, NucW, NucK, NucM, NucB, NucD, NucH, NucV, NucN}

	symbolToChar := map[Symbol]byte{
		NucGap: '-', NucA: 'A', NucC: 'C', NucG: 'G', NucT: 'T',
		NucR: 'R', NucY: 'Y', NucS: 'S', NucW: 'W', NucK: 'K', NucM: 'M',
		NucB: 'B', NucD: 'D', NucH: 'H', NucV: 'V', NucN: 'N',
	}

	charToSymbol := map[byte]Symbol{
		'-': NucGap,
		'A': NucA, 'a': NucA,
		'C': NucC, 'c': NucC,
		'G': NucG, 'g': NucG,
		'T': NucT, 't': NucT, 'U': NucT, 'u': NucT,
		'R': NucR, 'r': NucR,
		'Y': NucY, 'y': NucY,
		'S': NucS, 's': NucS,
		'W': NucW, 'w': NucW,
		'K': NucK, 'k': NucK,
		'M': NucM, 'm': NucM,
		'B': NucB, 'b': NucB,
		'D': NucD, 'd': NucD,
		'H': NucH, 'h': NucH,
		'V': NucV, 'v': NucV,
		'N': NucN, 'n': NucN,
	}

	ambiguity := map[Symbol][]Symbol{
		NucR: {NucA, NucG},
		NucY: {NucC, NucT},
		NucS: {NucG, NucC},
		NucW: {NucA, NucT},
		NucK: {NucG, NucT},
		NucM: {NucA, NucC},
		NucB: {NucC, NucG, NucT},
		NucD: {NucA, NucG, NucT},
		NucH: {NucA, NucC, NucT},
		NucV: {NucA, NucC, NucG},
		NucN: {NucGap, NucA, NucC, NucG, NucT, NucR, NucY, NucS, NucW, NucK, NucM, NucB, NucD, NucH, NucV},
	}

	return &Alphabet{
		Name:                 "Nucleotide",
		Symbols:              symbols,
		charToSymbol:         charToSymbol,
		symbolToChar:         symbolToChar,
		Missing:              NucN,
		ValidMutationSymbols: []Symbol{NucGap, NucA, NucC, NucG, NucT},
		Ambiguity:            ambiguity,
	}
}

// AminoAcid symbols, in canonical order: the 20 standard amino acids
// followed by X (any / missing), 21 in total.
const (
	AAA Symbol = iota
	AAR
	AAN
	AAD
	AAC
	AAE
	AAQ
	AAG
	AAH
	AAI
	AAL
	AAK
	AAM
	AAF
	AAP
	AAS
	AAT
	AAW
	AAY
	AAV
	AAX
)

// AA is the AminoAcid alphabet.
//
// The declared alphabet size is 21 (20 standard residues + X); there is no
// 22nd slot for a dedicated stop symbol. '*' (stop) is accepted on input
// and folds into X, the same bucket as any other non-standard residue —
// see DESIGN.md for why, in the absence of the original aa_symbols.h (not
// present in the retrieved source pack), this is the most literal reading
// of spec.md §6's symbol count.
var AA = buildAminoAcid()

func buildAminoAcid() *Alphabet {
	symbols := []Symbol{AAA, AAR, AAN, AAD, AAC, AAE, AAQ, AAG, AAH, AAI, AAL, AAK, AAM, AAF, AAP, AAS, AAT, AAW, AAY, AAV, AAX}

	symbolToChar := map[Symbol]byte{
		AAA: 'A', AAR: 'R', AAN: 'N', AAD: 'D', AAC: 'C', AAE: 'E', AAQ: 'Q',
		AAG: 'G', AAH: 'H', AAI: 'I', AAL: 'L', AAK: 'K', AAM: 'M', AAF: 'F',
		AAP: 'P', AAS: 'S', AAT: 'T', AAW: 'W', AAY: 'Y', AAV: 'V', AAX: 'X',
	}

	charToSymbol := map[byte]Symbol{}
	for sym, ch := range symbolToChar {
		charToSymbol[ch] = sym
	}
	charToSymbol['*'] = AAX

	return &Alphabet{
		Name:                 "AminoAcid",
		Symbols:              symbols,
		charToSymbol:         charToSymbol,
		symbolToChar:         symbolToChar,
		Missing:              AAX,
		ValidMutationSymbols: symbols[:20],
		Ambiguity:            map[Symbol][]Symbol{},
	}
}

// CharToSymbol translates an input character, returning false if it is not
// a member of the alphabet.
func (a *Alphabet) CharToSymbol(c byte) (Symbol, bool) {
	s, ok := a.charToSymbol[c]
	return s, ok
}

// SymbolToChar returns the canonical character for a symbol.
func (a *Alphabet) SymbolToChar(s Symbol) byte {
	c, ok := a.symbolToChar[s]
	if !ok {
		panic(fmt.Sprintf("%s: symbol %d out of range", a.Name, s))
	}
	return c
}

// Count returns the number of symbols in the alphabet.
func (a *Alphabet) Count() int {
	return len(a.Symbols)
}

// IsValidMutation reports whether s is a valid mutation target (excludes
// ambiguity codes).
func (a *Alphabet) IsValidMutation(s Symbol) bool {
	for _, v := range a.ValidMutationSymbols {
		if v == s {
			return true
		}
	}
	return false
}

// Expand returns the ambiguity expansion of s: the set of concrete symbols
// it may resolve to. For a non-ambiguous symbol this is {s} itself.
func (a *Alphabet) Expand(s Symbol) []Symbol {
	if exp, ok := a.Ambiguity[s]; ok {
		return exp
	}
	return []Symbol{s}
}

// Complement returns every symbol of the alphabet not in the given set.
func (a *Alphabet) Complement(set []Symbol) []Symbol {
	in := make(map[Symbol]bool, len(set))
	for _, s := range set {
		in[s] = true
	}
	out := make([]Symbol, 0, len(a.Symbols)-len(set))
	for _, s := range a.Symbols {
		if !in[s] {
			out = append(out, s)
		}
	}
	return out
}

// EncodeString converts a string of alphabet characters into symbols,
// returning an error naming the first invalid character.
func (a *Alphabet) EncodeString(s string) ([]Symbol, error) {
	out := make([]Symbol, len(s))
	for i := 0; i < len(s); i++ {
		sym, ok := a.CharToSymbol(s[i])
		if !ok {
			return nil, fmt.Errorf("%s: invalid character %q at offset %d", a.Name, s[i], i)
		}
		out[i] = sym
	}
	return out, nil
}

// DecodeString converts symbols back into their canonical character
// representation.
func (a *Alphabet) DecodeString(symbols []Symbol) string {
	buf := make([]byte, len(symbols))
	for i, s := range symbols {
		buf[i] = a.SymbolToChar(s)
	}
	return string(buf)
}
