package sequencestore

import (
	"bytes"
	"encoding/gob"

	"github.com/bits-and-blooms/bitset"
	"github.com/nishad/silo/internal/bitmapx"
)

// CoverageMode selects which side of the coverage predicate to evaluate,
// per spec.md §4.A.
type CoverageMode int

const (
	Covered CoverageMode = iota
	NotCovered
)

// HorizontalCoverageIndex records, per row, the non-missing region of a
// sequence column: a [start, end) range plus the positions inside that
// range which are individually missing. A row outside its [start, end)
// range is missing by definition; start == end encodes appendNull()'s
// fully-missing row.
//
// The per-row missing set is a github.com/bits-and-blooms/bitset, not a
// roaring bitmap: it is small (bounded by one reference length), created
// once per row and never unioned across rows, so a dense fixed-size bitset
// is cheaper than roaring's container machinery here.
type HorizontalCoverageIndex struct {
	length  int
	start   []int32
	end     []int32
	missing []*bitset.BitSet
}

// NewHorizontalCoverageIndex returns an empty coverage index for sequences
// of the given reference length.
func NewHorizontalCoverageIndex(length int) *HorizontalCoverageIndex {
	return &HorizontalCoverageIndex{length: length}
}

// Len returns the number of rows recorded.
func (h *HorizontalCoverageIndex) Len() int { return len(h.start) }

// AppendCoverage records a row's covered region [start, end) and the
// positions within it that are individually missing.
func (h *HorizontalCoverageIndex) AppendCoverage(start, end int, missingPositions []int) {
	b := bitset.New(uint(h.length))
	for _, p := range missingPositions {
		b.Set(uint(p))
	}
	h.start = append(h.start, int32(start))
	h.end = append(h.end, int32(end))
	h.missing = append(h.missing, b)
}

// AppendNull records a fully-missing row, per spec.md §4.A's appendNull().
func (h *HorizontalCoverageIndex) AppendNull() {
	h.start = append(h.start, 0)
	h.end = append(h.end, 0)
	h.missing = append(h.missing, bitset.New(uint(h.length)))
}

// IsCoveredAt reports whether row is covered at position: start <= position
// < end and position is not individually missing.
func (h *HorizontalCoverageIndex) IsCoveredAt(row uint32, position int) bool {
	s, e := h.start[row], h.end[row]
	if int32(position) < s || int32(position) >= e {
		return false
	}
	return !h.missing[row].Test(uint(position))
}

// IsInCoveredRegion returns the bitmap of rows satisfying the coverage
// predicate at position under mode, per spec.md §4.A. This is a full row
// scan: the coverage index trades index size for query-time work, matching
// the spec's array-of-ranges representation rather than an inverted index.
func (h *HorizontalCoverageIndex) IsInCoveredRegion(position int, mode CoverageMode) *bitmapx.Bitmap {
	result := bitmapx.New()
	for row := 0; row < len(h.start); row++ {
		covered := h.IsCoveredAt(uint32(row), position)
		if (mode == Covered) == covered {
			result.Add(uint32(row))
		}
	}
	return result
}

// ShrinkToFit trims excess capacity after ingest.
func (h *HorizontalCoverageIndex) ShrinkToFit() {
	start := make([]int32, len(h.start))
	copy(start, h.start)
	h.start = start
	end := make([]int32, len(h.end))
	copy(end, h.end)
	h.end = end
}

// horizontalCoverageGob mirrors HorizontalCoverageIndex for gob, encoding
// each row's bitset through its own binary marshaler.
type horizontalCoverageGob struct {
	Length  int
	Start   []int32
	End     []int32
	Missing [][]byte
}

// GobEncode implements gob.GobEncoder.
func (h *HorizontalCoverageIndex) GobEncode() ([]byte, error) {
	missing := make([][]byte, len(h.missing))
	for i, b := range h.missing {
		data, err := b.MarshalBinary()
		if err != nil {
			return nil, err
		}
		missing[i] = data
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(horizontalCoverageGob{
		Length: h.length, Start: h.start, End: h.end, Missing: missing,
	})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (h *HorizontalCoverageIndex) GobDecode(data []byte) error {
	var aux horizontalCoverageGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	h.length = aux.Length
	h.start = aux.Start
	h.end = aux.End
	h.missing = make([]*bitset.BitSet, len(aux.Missing))
	for i, data := range aux.Missing {
		b := &bitset.BitSet{}
		if err := b.UnmarshalBinary(data); err != nil {
			return err
		}
		h.missing[i] = b
	}
	return nil
}
