package sequencestore

import (
	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/bitmapx"
)

// Mode is the ambiguity-handling mode under which a SymbolEquals or
// HasMutation filter node compiles, per spec.md §4.A. It is called
// NONE/UPPER/LOWER internally there; this package spells them out.
type Mode int

const (
	Exact Mode = iota
	UpperBound
	LowerBound
)

// Flip returns the mode Not propagates to its child, per spec.md §4.B:
// Not flips UPPER <-> LOWER and leaves EXACT unchanged.
func (m Mode) Flip() Mode {
	switch m {
	case UpperBound:
		return LowerBound
	case LowerBound:
		return UpperBound
	default:
		return m
	}
}

// SymbolEquals compiles the filter node "symbol at position equals s"
// under mode, per spec.md §4.A:
//
//   - EXACT:       SymbolInSet(p, {s})
//   - UPPER_BOUND: SymbolInSet(p, ambiguity_expansion(s) ∪ {s})
//   - LOWER_BOUND: NOT(SymbolInSet(p, everything_except(s)))
func (s *SequenceStore) SymbolEquals(position int, symbol alphabet.Symbol, mode Mode) *bitmapx.Bitmap {
	switch mode {
	case UpperBound:
		set := unionSymbol(s.Alphabet.Expand(symbol), symbol)
		return s.SymbolEqualsSet(position, set)
	case LowerBound:
		everythingElse := removeSymbol(s.Alphabet.Symbols, symbol)
		matching := s.SymbolEqualsSet(position, everythingElse)
		return matching.Flip(0, uint64(s.rowCount))
	default:
		return s.SymbolEqualsSet(position, []alphabet.Symbol{symbol})
	}
}

// HasMutationMode compiles "symbol at position differs from reference"
// under mode, per spec.md §4.A: NOT(SymbolEquals(p, reference[p])) with
// UPPER_BOUND/LOWER_BOUND propagation flipped through the negation. The
// reference is the global Reference, not LocalReference: "differs from
// reference" means differs from the database's reference genome, and
// LocalReference is only a storage optimization internal to
// SymbolEqualsSet.
func (s *SequenceStore) HasMutationMode(position int, mode Mode) *bitmapx.Bitmap {
	ref := s.Reference[position]
	matching := s.SymbolEquals(position, ref, mode.Flip())
	return matching.Flip(0, uint64(s.rowCount))
}

func unionSymbol(symbols []alphabet.Symbol, extra alphabet.Symbol) []alphabet.Symbol {
	for _, s := range symbols {
		if s == extra {
			return symbols
		}
	}
	return append(append([]alphabet.Symbol{}, symbols...), extra)
}
