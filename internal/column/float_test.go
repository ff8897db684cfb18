package column

import (
	"math"
	"testing"
)

func float64Ptr(v float64) *float64 { return &v }

func TestFloatPartitionAppendGet(t *testing.T) {
	c := NewFloatPartition("coverage")
	c.Append(float64Ptr(3.14))
	c.Append(nil)

	v, ok := c.Get(0)
	if v != 3.14 || !ok {
		t.Errorf("Get(0) = (%v, %v), want (3.14, true)", v, ok)
	}
	v, ok = c.Get(1)
	if ok {
		t.Errorf("Get(1) ok = true, want false")
	}
	if !math.IsNaN(v) {
		t.Errorf("Get(1) value = %v, want NaN", v)
	}
	if !c.IsNull(1) {
		t.Error("IsNull(1) = false, want true")
	}
}

func TestEqualNullAware(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"equal", 1.5, 1.5, true},
		{"not equal", 1.5, 2.5, false},
		{"both nan", math.NaN(), math.NaN(), true},
		{"one nan", math.NaN(), 1.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualNullAware(tt.a, tt.b); got != tt.want {
				t.Errorf("EqualNullAware(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
