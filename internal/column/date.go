package column

import "time"

// epoch is day zero for the DATE column's 32-bit day-count encoding. Zero
// itself encodes null (spec.md §6), so the epoch and later dates are stored
// as 1-based offsets from it (the epoch itself is 1); earlier dates keep
// their negative day counts.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// DatePartition is a column partition of nullable dates, encoded as a
// 32-bit day count where 0 means null.
type DatePartition struct {
	Name string
	Data []int32
}

// NewDatePartition returns an empty, growable date column partition.
func NewDatePartition(name string) *DatePartition {
	return &DatePartition{Name: name}
}

// Len returns the number of rows.
func (c *DatePartition) Len() int { return len(c.Data) }

// EncodeDate converts a calendar date to its day-count encoding.
func EncodeDate(t time.Time) int32 {
	days := int32(t.UTC().Sub(epoch).Hours() / 24)
	if days >= 0 {
		// Day zero is reserved for null; shift the epoch and every later
		// date up by one so each round-trips unambiguously.
		return days + 1
	}
	return days
}

// DecodeDate converts a day-count encoding back to a calendar date.
func DecodeDate(days int32) time.Time {
	if days > 0 {
		days--
	}
	return epoch.AddDate(0, 0, int(days))
}

// Append adds a row. value == nil encodes null.
func (c *DatePartition) Append(value *time.Time) {
	if value == nil {
		c.Data = append(c.Data, 0)
		return
	}
	c.Data = append(c.Data, EncodeDate(*value))
}

// Get returns the row's value and whether it is non-null.
func (c *DatePartition) Get(row int) (value time.Time, ok bool) {
	v := c.Data[row]
	if v == 0 {
		return time.Time{}, false
	}
	return DecodeDate(v), true
}

// IsNull reports whether row is null.
func (c *DatePartition) IsNull(row int) bool {
	return c.Data[row] == 0
}

// ShrinkToFit trims excess capacity after ingest.
func (c *DatePartition) ShrinkToFit() {
	data := make([]int32, len(c.Data))
	copy(data, c.Data)
	c.Data = data
}
