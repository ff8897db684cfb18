package column

// Bool nullability encoding, per spec.md §6: a single byte,
// 0x00 = null, 0x80 = false, 0x81 = true.
const (
	boolNull  byte = 0x00
	boolFalse byte = 0x80
	boolTrue  byte = 0x81
)

// BoolPartition is a column partition of three-valued booleans.
type BoolPartition struct {
	Name string
	Data []byte
}

// NewBoolPartition returns an empty, growable bool column partition.
func NewBoolPartition(name string) *BoolPartition {
	return &BoolPartition{Name: name}
}

// Len returns the number of rows.
func (c *BoolPartition) Len() int { return len(c.Data) }

// Append adds a row. value == nil encodes null.
func (c *BoolPartition) Append(value *bool) {
	switch {
	case value == nil:
		c.Data = append(c.Data, boolNull)
	case *value:
		c.Data = append(c.Data, boolTrue)
	default:
		c.Data = append(c.Data, boolFalse)
	}
}

// Get returns the row's value and whether it is non-null.
func (c *BoolPartition) Get(row int) (value bool, ok bool) {
	switch c.Data[row] {
	case boolTrue:
		return true, true
	case boolFalse:
		return false, true
	default:
		return false, false
	}
}

// IsNull reports whether row is null.
func (c *BoolPartition) IsNull(row int) bool {
	return c.Data[row] == boolNull
}

// ShrinkToFit trims excess capacity after ingest, called from
// Partition.Finalize() (spec.md §3 lifecycle).
func (c *BoolPartition) ShrinkToFit() {
	data := make([]byte, len(c.Data))
	copy(data, c.Data)
	c.Data = data
}
