// Package sequencestore implements Component D (spec.md §4.A): the
// per-column sequence store answering "which rows have symbol s at
// position p" and reconstructing any row's sequence.
//
// The vertical index is grounded on
// original_source/src/silo/storage/column/vertical_sequence_index.h, which
// tiles the vertical index into 2^16-row slabs and unions at the
// roaring-container level for a single linear pass. The Go roaring library
// (RoaringBitmap/roaring/v2) does not expose container internals the way
// CRoaring's C API does, so this package takes the simpler, spec-permitted
// fallback: one *bitmapx.Bitmap per (position, symbol), unioned with
// bitmapx.FastUnion, which RoaringBitmap/roaring implements as a single
// lazy multi-way container merge internally — functionally equivalent to
// the tiled union for query purposes, at the cost of the tiling's memory
// locality during ingest.
package sequencestore

import (
	"bytes"
	"encoding/gob"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/bitmapx"
)

// VerticalIndex stores, for every (position, symbol) pair, the bitmap of
// row ids carrying that symbol at that position.
type VerticalIndex struct {
	alphabetSize int
	bitmaps      [][]*bitmapx.Bitmap // [position][symbol]
}

// NewVerticalIndex returns an index over a sequence of the given length,
// for the given alphabet.
func NewVerticalIndex(length int, a *alphabet.Alphabet) *VerticalIndex {
	bitmaps := make([][]*bitmapx.Bitmap, length)
	for p := range bitmaps {
		row := make([]*bitmapx.Bitmap, a.Count())
		for s := range row {
			row[s] = bitmapx.New()
		}
		bitmaps[p] = row
	}
	return &VerticalIndex{alphabetSize: a.Count(), bitmaps: bitmaps}
}

// Length returns the number of positions the index covers.
func (v *VerticalIndex) Length() int { return len(v.bitmaps) }

// AddSymbol records that row carries symbol at position.
func (v *VerticalIndex) AddSymbol(position int, symbol alphabet.Symbol, row uint32) {
	v.bitmaps[position][symbol].Add(row)
}

// MoveRows removes rows from the (position, from) bitmap and adds them to
// the (position, to) bitmap.
func (v *VerticalIndex) MoveRows(position int, from, to alphabet.Symbol, rows *bitmapx.Bitmap) {
	v.bitmaps[position][from].AndNot(rows)
	v.bitmaps[position][to].Or(rows)
}

// SwapReferenceSymbol rewires the index after position's local reference
// changes from oldRef to newRef (spec.md §4.A's Finalize rewrite): newRef's
// bitmap is cleared entirely (its rows now match the reference and are no
// longer recorded), and rowsWithOldRef — the rows whose actual symbol is
// oldRef, previously unrecorded because they matched the old reference —
// becomes oldRef's bitmap.
func (v *VerticalIndex) SwapReferenceSymbol(position int, oldRef, newRef alphabet.Symbol, rowsWithOldRef *bitmapx.Bitmap) {
	v.bitmaps[position][newRef] = bitmapx.New()
	v.bitmaps[position][oldRef].Or(rowsWithOldRef)
}

// Bitmap returns the live bitmap for (position, symbol). Callers must treat
// it as borrowed and not mutate it unless they own the only reference.
func (v *VerticalIndex) Bitmap(position int, symbol alphabet.Symbol) *bitmapx.Bitmap {
	return v.bitmaps[position][symbol]
}

// Cardinality returns the number of rows carrying symbol at position.
func (v *VerticalIndex) Cardinality(position int, symbol alphabet.Symbol) uint64 {
	return v.bitmaps[position][symbol].Cardinality()
}

// GetMatchingContainersAsBitmap unions the bitmaps of every symbol in
// symbols at position, per spec.md §4.A.
func (v *VerticalIndex) GetMatchingContainersAsBitmap(position int, symbols []alphabet.Symbol) *bitmapx.Bitmap {
	toUnion := make([]*bitmapx.Bitmap, len(symbols))
	for i, s := range symbols {
		toUnion[i] = v.bitmaps[position][s]
	}
	return bitmapx.FastUnion(toUnion...)
}

// GetNonMatchingContainersAsBitmap returns the complement over
// [0, rowCount) of the rows recorded under symbols at position. Rows not
// covered at that position are not excluded. rowCount is the total row
// count, used to complement the matching set.
func (v *VerticalIndex) GetNonMatchingContainersAsBitmap(position int, symbols []alphabet.Symbol, rowCount uint64) *bitmapx.Bitmap {
	matching := v.GetMatchingContainersAsBitmap(position, symbols)
	return matching.Flip(0, rowCount)
}

// RunOptimize compresses every per-symbol bitmap for read-only query
// workloads, called once from Finalize.
func (v *VerticalIndex) RunOptimize() {
	for _, row := range v.bitmaps {
		for _, b := range row {
			b.RunOptimize()
		}
	}
}

// verticalIndexGob mirrors VerticalIndex's unexported fields with exported
// names so gob can see them; the index's own fields stay unexported to
// keep Bitmap/Cardinality/etc. the only mutation surface.
type verticalIndexGob struct {
	AlphabetSize int
	Bitmaps      [][]*bitmapx.Bitmap
}

// GobEncode implements gob.GobEncoder.
func (v *VerticalIndex) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(verticalIndexGob{AlphabetSize: v.alphabetSize, Bitmaps: v.bitmaps})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (v *VerticalIndex) GobDecode(data []byte) error {
	var aux verticalIndexGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	v.alphabetSize = aux.AlphabetSize
	v.bitmaps = aux.Bitmaps
	return nil
}
