package column

import "math"

// IntNull is the INT32_MIN sentinel that encodes null, per spec.md §6.
const IntNull int32 = math.MinInt32

// IntPartition is a column partition of nullable int32 values.
type IntPartition struct {
	Name string
	Data []int32
}

// NewIntPartition returns an empty, growable int column partition.
func NewIntPartition(name string) *IntPartition {
	return &IntPartition{Name: name}
}

// Len returns the number of rows.
func (c *IntPartition) Len() int { return len(c.Data) }

// Append adds a row. value == nil encodes null.
func (c *IntPartition) Append(value *int32) {
	if value == nil {
		c.Data = append(c.Data, IntNull)
		return
	}
	c.Data = append(c.Data, *value)
}

// Get returns the row's value and whether it is non-null.
func (c *IntPartition) Get(row int) (value int32, ok bool) {
	v := c.Data[row]
	return v, v != IntNull
}

// IsNull reports whether row is null.
func (c *IntPartition) IsNull(row int) bool {
	return c.Data[row] == IntNull
}

// ShrinkToFit trims excess capacity after ingest.
func (c *IntPartition) ShrinkToFit() {
	data := make([]int32, len(c.Data))
	copy(data, c.Data)
	c.Data = data
}
