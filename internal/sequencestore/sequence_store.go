package sequencestore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/bitmapx"
)

// BufferSize is the row-batch size at which pending appends are flushed
// into the vertical index, per spec.md §4.A. CRoaring's tiled container
// representation makes this batching a real write-amplification win; the
// Go roaring library's per-bitmap Add is already O(log n), so the buffer is
// kept for structural parity with the ingest pipeline described in
// original_source/src/silo/storage/column/vertical_sequence_index.cpp
// rather than for a measurable performance gain here.
const BufferSize = 1024

type pendingSymbol struct {
	position int
	symbol   alphabet.Symbol
	row      uint32
}

// SequenceStore is Component D's top-level per-column store: the vertical
// index, horizontal coverage index and insertion index for one sequence
// column, plus the reference sequence every row's symbols are diffed
// against.
type SequenceStore struct {
	Name      string
	Alphabet  *alphabet.Alphabet
	Reference []alphabet.Symbol

	// LocalReference is the per-position majority symbol used to decide
	// which symbol each row's vertical-index entry omits. It starts equal
	// to Reference and may be rewritten per position during Finalize.
	LocalReference []alphabet.Symbol

	Vertical   *VerticalIndex
	Coverage   *HorizontalCoverageIndex
	Insertions *InsertionIndex

	rowCount uint32
	buffer   []pendingSymbol
	final    bool
}

// NewSequenceStore returns a sequence store for a column with the given
// reference sequence and alphabet.
func NewSequenceStore(name string, a *alphabet.Alphabet, reference []alphabet.Symbol) *SequenceStore {
	localRef := make([]alphabet.Symbol, len(reference))
	copy(localRef, reference)
	return &SequenceStore{
		Name:           name,
		Alphabet:       a,
		Reference:      reference,
		LocalReference: localRef,
		Vertical:       NewVerticalIndex(len(reference), a),
		Coverage:       NewHorizontalCoverageIndex(len(reference)),
		Insertions:     NewInsertionIndex(),
	}
}

// Length returns the reference length this store indexes.
func (s *SequenceStore) Length() int { return len(s.Reference) }

// RowCount returns the number of rows appended so far.
func (s *SequenceStore) RowCount() uint32 { return s.rowCount }

// Append validates and indexes one row's sequence, per spec.md §4.A.
// offset plus the length of symbols must not exceed the reference length.
// insertions maps a 0-based position to inserted text at that position.
// offset is for sequences shorter than the reference that start partway
// through it; positions before offset, and after the end of symbols, are
// treated as missing.
func (s *SequenceStore) Append(symbols []alphabet.Symbol, offset int, insertions map[int]string) error {
	if s.final {
		return fmt.Errorf("sequencestore %s: append after finalize", s.Name)
	}
	if len(symbols)+offset > len(s.Reference) {
		return fmt.Errorf("sequencestore %s: sequence of length %d at offset %d exceeds reference length %d", s.Name, len(symbols), offset, len(s.Reference))
	}

	row := s.rowCount
	start := offset
	end := offset + len(symbols)
	var missingPositions []int

	for i, sym := range symbols {
		position := offset + i
		if sym == s.Alphabet.Missing {
			missingPositions = append(missingPositions, position)
			continue
		}
		if sym != s.LocalReference[position] {
			s.buffer = append(s.buffer, pendingSymbol{position: position, symbol: sym, row: row})
		}
	}

	for position, text := range insertions {
		s.Insertions.Add(position, text, row)
	}

	s.Coverage.AppendCoverage(start, end, missingPositions)
	s.rowCount++

	if s.rowCount%BufferSize == 0 {
		s.flush()
	}
	return nil
}

// AppendNull registers a fully-missing row, per spec.md §4.A's
// appendNull().
func (s *SequenceStore) AppendNull() {
	s.Coverage.AppendNull()
	s.rowCount++
}

func (s *SequenceStore) flush() {
	for _, p := range s.buffer {
		s.Vertical.AddSymbol(p.position, p.symbol, p.row)
	}
	s.buffer = s.buffer[:0]
}

// Finalize flushes any buffered appends, rewrites each position's local
// reference to its true majority symbol, and compresses every index for
// read-only query workloads. No further Append/AppendNull calls are valid
// after Finalize.
func (s *SequenceStore) Finalize() {
	s.flush()

	for position := 0; position < len(s.Reference); position++ {
		s.rewriteLocalReference(position)
	}

	s.Vertical.RunOptimize()
	s.Coverage.ShrinkToFit()
	s.Insertions.RunOptimize()
	s.final = true
}

// rewriteLocalReference implements spec.md §4.A's Finalize step: for
// position, the reference-symbol count is the covered row count minus the
// sum of every other symbol's cardinality at that position. If another
// symbol has a strictly larger count, it becomes the new local reference.
// The rows that actually carry the old reference symbol (never indexed
// while it was the reference) are computed as covered-minus-every-other-
// symbol's-bitmap and become the old reference's new entry; the new
// reference's own bitmap (whose rows now match the reference) is cleared.
func (s *SequenceStore) rewriteLocalReference(position int) {
	oldRef := s.LocalReference[position]

	others := make([]*bitmapx.Bitmap, 0, len(s.Alphabet.Symbols)-1)
	for _, sym := range s.Alphabet.Symbols {
		if sym == oldRef {
			continue
		}
		others = append(others, s.Vertical.Bitmap(position, sym))
	}
	rowsWithOldRef := s.Coverage.IsInCoveredRegion(position, Covered)
	rowsWithOldRef.AndNot(bitmapx.FastUnion(others...))
	refCount := int64(rowsWithOldRef.Cardinality())

	bestSymbol := oldRef
	bestCount := refCount
	for _, sym := range s.Alphabet.ValidMutationSymbols {
		if sym == oldRef {
			continue
		}
		count := int64(s.Vertical.Cardinality(position, sym))
		if count > bestCount {
			bestSymbol = sym
			bestCount = count
		}
	}
	if bestSymbol == oldRef {
		return
	}

	s.Vertical.SwapReferenceSymbol(position, oldRef, bestSymbol, rowsWithOldRef)
	s.LocalReference[position] = bestSymbol
}

// GetMatchingContainersAsBitmap unions the vertical-index bitmaps of every
// symbol in symbols at position, per spec.md §4.A.
func (s *SequenceStore) GetMatchingContainersAsBitmap(position int, symbols []alphabet.Symbol) *bitmapx.Bitmap {
	return s.Vertical.GetMatchingContainersAsBitmap(position, symbols)
}

// SymbolEqualsSet compiles the filter node "symbol at position is in set
// symbols" using the four cases of spec.md §4.A, based on whether symbols
// contains the local-reference symbol and/or the missing symbol.
func (s *SequenceStore) SymbolEqualsSet(position int, symbols []alphabet.Symbol) *bitmapx.Bitmap {
	ref := s.LocalReference[position]
	missing := s.Alphabet.Missing

	containsRef := containsSymbol(symbols, ref)
	containsMissing := containsSymbol(symbols, missing)

	switch {
	case containsRef && containsMissing:
		// Case 1: COMPLEMENT(vertical[p, complement(S)]).
		complement := s.Alphabet.Complement(symbols)
		matching := s.Vertical.GetMatchingContainersAsBitmap(position, complement)
		return matching.Flip(0, uint64(s.rowCount))
	case containsMissing:
		// Case 2: NOT_COVERED(p) ∪ vertical[p, S].
		notCovered := s.Coverage.IsInCoveredRegion(position, NotCovered)
		matching := s.Vertical.GetMatchingContainersAsBitmap(position, symbols)
		notCovered.Or(matching)
		return notCovered
	case containsRef:
		// Case 3: COVERED(p) \ vertical[p, complement(S) \ {missing}].
		complement := removeSymbol(s.Alphabet.Complement(symbols), missing)
		matching := s.Vertical.GetMatchingContainersAsBitmap(position, complement)
		covered := s.Coverage.IsInCoveredRegion(position, Covered)
		covered.AndNot(matching)
		return covered
	default:
		// Case 4: vertical[p, S].
		return s.Vertical.GetMatchingContainersAsBitmap(position, symbols)
	}
}

// HasMutation compiles "symbol at position differs from reference", per
// spec.md §4.A: NOT(SymbolEquals(position, reference[position])). The
// reference here is the global Reference, not the per-partition
// LocalReference: "mutation" means "differs from the database's reference
// genome", and LocalReference is purely a storage optimization internal to
// SymbolEqualsSet (see original_source/src/silo/query_engine/filter_expressions/
// nucleotide_symbol_equals.cpp, which resolves the reference symbol from
// database.reference_genome).
func (s *SequenceStore) HasMutation(position int) *bitmapx.Bitmap {
	ref := s.Reference[position]
	equalsRef := s.SymbolEqualsSet(position, []alphabet.Symbol{ref})
	return equalsRef.Flip(0, uint64(s.rowCount))
}

// SymbolAt returns row's symbol at position: the local reference unless
// row is recorded in some other symbol's vertical-index bitmap there.
// Used by sequence reconstruction (spec.md §4.D's Fasta/FastaAligned
// actions), which needs one row's full sequence rather than a set
// membership test.
func (s *SequenceStore) SymbolAt(row uint32, position int) alphabet.Symbol {
	ref := s.LocalReference[position]
	for _, sym := range s.Alphabet.Symbols {
		if sym == ref {
			continue
		}
		if s.Vertical.Bitmap(position, sym).Contains(row) {
			return sym
		}
	}
	return ref
}

// ReconstructAligned returns row's full aligned sequence: SymbolAt for
// every covered position, the alphabet's missing symbol elsewhere.
func (s *SequenceStore) ReconstructAligned(row uint32) []alphabet.Symbol {
	out := make([]alphabet.Symbol, len(s.Reference))
	for p := range out {
		if !s.Coverage.IsCoveredAt(row, p) {
			out[p] = s.Alphabet.Missing
			continue
		}
		out[p] = s.SymbolAt(row, p)
	}
	return out
}

func containsSymbol(symbols []alphabet.Symbol, target alphabet.Symbol) bool {
	for _, s := range symbols {
		if s == target {
			return true
		}
	}
	return false
}

func removeSymbol(symbols []alphabet.Symbol, target alphabet.Symbol) []alphabet.Symbol {
	out := make([]alphabet.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// sequenceStoreGob mirrors SequenceStore for gob, storing the alphabet by
// name rather than attempting to serialize *alphabet.Alphabet itself (its
// char/symbol maps are unexported and, being process-wide singletons, need
// no persistence — only a name to look them back up by).
type sequenceStoreGob struct {
	Name           string
	AlphabetName   string
	Reference      []alphabet.Symbol
	LocalReference []alphabet.Symbol
	Vertical       *VerticalIndex
	Coverage       *HorizontalCoverageIndex
	Insertions     *InsertionIndex
	RowCount       uint32
	Final          bool
}

// GobEncode implements gob.GobEncoder.
func (s *SequenceStore) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(sequenceStoreGob{
		Name:           s.Name,
		AlphabetName:   s.Alphabet.Name,
		Reference:      s.Reference,
		LocalReference: s.LocalReference,
		Vertical:       s.Vertical,
		Coverage:       s.Coverage,
		Insertions:     s.Insertions,
		RowCount:       s.rowCount,
		Final:          s.final,
	})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (s *SequenceStore) GobDecode(data []byte) error {
	var aux sequenceStoreGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	switch aux.AlphabetName {
	case alphabet.Nuc.Name:
		s.Alphabet = alphabet.Nuc
	case alphabet.AA.Name:
		s.Alphabet = alphabet.AA
	default:
		return fmt.Errorf("sequencestore: unknown alphabet %q", aux.AlphabetName)
	}
	s.Name = aux.Name
	s.Reference = aux.Reference
	s.LocalReference = aux.LocalReference
	s.Vertical = aux.Vertical
	s.Coverage = aux.Coverage
	s.Insertions = aux.Insertions
	s.rowCount = aux.RowCount
	s.final = aux.Final
	return nil
}
