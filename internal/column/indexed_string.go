package column

import (
	"bytes"
	"encoding/gob"

	"github.com/nishad/silo/internal/bitmapx"
)

// indexedStringNull is the dictionary code reserved for null.
const indexedStringNull int32 = -1

// IndexedStringPartition is a column partition of low-cardinality strings
// (spec.md §3), dictionary-encoded to a small integer per row plus a
// per-value row-id bitmap. Equality filters on an IndexedString column
// (e.g. pangoLineage, country) compile directly to the stored bitmap for
// the matched value instead of a row scan (Component F/G).
type IndexedStringPartition struct {
	Name string

	// Data holds the dictionary code per row; indexedStringNull for null.
	Data []int32

	dict    map[string]int32
	values  []string
	bitmaps []*bitmapx.Bitmap
}

// NewIndexedStringPartition returns an empty, growable indexed-string
// column partition.
func NewIndexedStringPartition(name string) *IndexedStringPartition {
	return &IndexedStringPartition{
		Name: name,
		dict: make(map[string]int32),
	}
}

// Len returns the number of rows.
func (c *IndexedStringPartition) Len() int { return len(c.Data) }

// Append adds a row. value == nil encodes null.
func (c *IndexedStringPartition) Append(value *string) {
	row := int32(len(c.Data))
	if value == nil {
		c.Data = append(c.Data, indexedStringNull)
		return
	}
	code, ok := c.dict[*value]
	if !ok {
		code = int32(len(c.values))
		c.dict[*value] = code
		c.values = append(c.values, *value)
		c.bitmaps = append(c.bitmaps, bitmapx.New())
	}
	c.Data = append(c.Data, code)
	c.bitmaps[code].Add(uint32(row))
}

// Get returns the row's value and whether it is non-null.
func (c *IndexedStringPartition) Get(row int) (value string, ok bool) {
	code := c.Data[row]
	if code == indexedStringNull {
		return "", false
	}
	return c.values[code], true
}

// IsNull reports whether row is null.
func (c *IndexedStringPartition) IsNull(row int) bool {
	return c.Data[row] == indexedStringNull
}

// Lookup returns the row-id bitmap for value, or nil if value never
// appears in this partition. The caller must not mutate the result; it is
// the partition's live index, not a copy (Component G's IndexScan operator
// borrows it directly).
func (c *IndexedStringPartition) Lookup(value string) *bitmapx.Bitmap {
	code, ok := c.dict[value]
	if !ok {
		return nil
	}
	return c.bitmaps[code]
}

// Values returns the partition's distinct non-null values in dictionary
// order, for regex and "in set" compilation over the whole dictionary
// (Component F) without a full row scan.
func (c *IndexedStringPartition) Values() []string {
	return c.values
}

// ShrinkToFit trims excess capacity after ingest and optimizes the
// per-value bitmaps for read-only query workloads.
func (c *IndexedStringPartition) ShrinkToFit() {
	data := make([]int32, len(c.Data))
	copy(data, c.Data)
	c.Data = data
	for _, b := range c.bitmaps {
		b.RunOptimize()
	}
}

// indexedStringGob mirrors IndexedStringPartition for gob. The per-value
// bitmaps are rebuilt from Data+Values on decode rather than serialized
// directly: they are a pure function of the dictionary codes, so
// re-deriving them keeps the wire format smaller and self-consistent.
type indexedStringGob struct {
	Name   string
	Data   []int32
	Values []string
}

// GobEncode implements gob.GobEncoder.
func (c *IndexedStringPartition) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(indexedStringGob{Name: c.Name, Data: c.Data, Values: c.values})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (c *IndexedStringPartition) GobDecode(data []byte) error {
	var aux indexedStringGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	c.Name = aux.Name
	c.Data = aux.Data
	c.values = aux.Values
	c.dict = make(map[string]int32, len(aux.Values))
	c.bitmaps = make([]*bitmapx.Bitmap, len(aux.Values))
	for i, v := range aux.Values {
		c.dict[v] = int32(i)
		c.bitmaps[i] = bitmapx.New()
	}
	for row, code := range c.Data {
		if code != indexedStringNull {
			c.bitmaps[code].Add(uint32(row))
		}
	}
	return nil
}
