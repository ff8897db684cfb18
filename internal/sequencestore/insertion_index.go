package sequencestore

import (
	"bytes"
	"encoding/gob"
	"regexp"
	"sort"

	"github.com/nishad/silo/internal/bitmapx"
)

// InsertionIndex stores, per position, the distinct inserted sequences
// observed and the bitmap of rows carrying each one. A literal insertion
// query is a direct map lookup; a regex query unions every key's bitmap
// whose text matches, per spec.md §4.A.
type InsertionIndex struct {
	byPosition map[int]map[string]*bitmapx.Bitmap
}

// NewInsertionIndex returns an empty insertion index.
func NewInsertionIndex() *InsertionIndex {
	return &InsertionIndex{byPosition: make(map[int]map[string]*bitmapx.Bitmap)}
}

// Add records that row carries the given inserted sequence text at
// position.
func (idx *InsertionIndex) Add(position int, text string, row uint32) {
	byText, ok := idx.byPosition[position]
	if !ok {
		byText = make(map[string]*bitmapx.Bitmap)
		idx.byPosition[position] = byText
	}
	b, ok := byText[text]
	if !ok {
		b = bitmapx.New()
		byText[text] = b
	}
	b.Add(row)
}

// Lookup returns the bitmap of rows with exactly text inserted at
// position, or an empty bitmap if there is no such insertion.
func (idx *InsertionIndex) Lookup(position int, text string) *bitmapx.Bitmap {
	byText, ok := idx.byPosition[position]
	if !ok {
		return bitmapx.New()
	}
	b, ok := byText[text]
	if !ok {
		return bitmapx.New()
	}
	return b
}

// Search unions the bitmaps of every insertion at position whose text
// matches pattern, per spec.md §4.A's regex-style insertion queries.
func (idx *InsertionIndex) Search(position int, pattern *regexp.Regexp) *bitmapx.Bitmap {
	byText, ok := idx.byPosition[position]
	if !ok {
		return bitmapx.New()
	}
	toUnion := make([]*bitmapx.Bitmap, 0, len(byText))
	for text, b := range byText {
		if pattern.MatchString(text) {
			toUnion = append(toUnion, b)
		}
	}
	return bitmapx.FastUnion(toUnion...)
}

// Positions returns every position with at least one recorded insertion,
// in ascending order — used by the InsertionAggregation action (spec.md
// §4.D) to enumerate what to report without a full position scan.
func (idx *InsertionIndex) Positions() []int {
	positions := make([]int, 0, len(idx.byPosition))
	for p := range idx.byPosition {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

// ByText returns the position's distinct inserted texts and their row-id
// bitmaps, for an aggregation action that must enumerate every insertion
// rather than test a specific one.
func (idx *InsertionIndex) ByText(position int) map[string]*bitmapx.Bitmap {
	return idx.byPosition[position]
}

// RowText returns the inserted text row carries at position, if any. Used
// by sequence reconstruction (spec.md §4.D's Fasta action), which needs
// "what did this specific row insert here" rather than a bitmap of rows
// matching one candidate text.
func (idx *InsertionIndex) RowText(position int, row uint32) (string, bool) {
	byText, ok := idx.byPosition[position]
	if !ok {
		return "", false
	}
	for text, b := range byText {
		if b.Contains(row) {
			return text, true
		}
	}
	return "", false
}

// RunOptimize compresses every insertion bitmap for read-only workloads.
func (idx *InsertionIndex) RunOptimize() {
	for _, byText := range idx.byPosition {
		for _, b := range byText {
			b.RunOptimize()
		}
	}
}

// insertionIndexGob mirrors InsertionIndex for gob.
type insertionIndexGob struct {
	ByPosition map[int]map[string]*bitmapx.Bitmap
}

// GobEncode implements gob.GobEncoder.
func (idx *InsertionIndex) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(insertionIndexGob{ByPosition: idx.byPosition})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (idx *InsertionIndex) GobDecode(data []byte) error {
	var aux insertionIndexGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	idx.byPosition = aux.ByPosition
	return nil
}
