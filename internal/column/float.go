package column

import "math"

// FloatPartition is a column partition of nullable float64 values. NaN
// encodes null, per spec.md §6; the engine treats two NaNs as equal, unlike
// IEEE 754 float comparison.
type FloatPartition struct {
	Name string
	Data []float64
}

// NewFloatPartition returns an empty, growable float column partition.
func NewFloatPartition(name string) *FloatPartition {
	return &FloatPartition{Name: name}
}

// Len returns the number of rows.
func (c *FloatPartition) Len() int { return len(c.Data) }

// Append adds a row. value == nil encodes null (stored as NaN).
func (c *FloatPartition) Append(value *float64) {
	if value == nil {
		c.Data = append(c.Data, math.NaN())
		return
	}
	c.Data = append(c.Data, *value)
}

// Get returns the row's value and whether it is non-null.
func (c *FloatPartition) Get(row int) (value float64, ok bool) {
	v := c.Data[row]
	return v, !math.IsNaN(v)
}

// IsNull reports whether row is null.
func (c *FloatPartition) IsNull(row int) bool {
	return math.IsNaN(c.Data[row])
}

// ShrinkToFit trims excess capacity after ingest.
func (c *FloatPartition) ShrinkToFit() {
	data := make([]float64, len(c.Data))
	copy(data, c.Data)
	c.Data = data
}

// EqualNullAware compares two float64 values the way the engine does:
// NaN == NaN is true (both null), otherwise ordinary equality.
func EqualNullAware(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
