package column

import (
	"testing"
	"time"
)

func TestEncodeDecodeDateRoundTrip(t *testing.T) {
	tests := []time.Time{
		time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
		time.Date(1950, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, want := range tests {
		days := EncodeDate(want)
		got := DecodeDate(days)
		if !got.Equal(want) {
			t.Errorf("round trip of %v = %v", want, got)
		}
	}
}

func TestEncodeDateEpochDoesNotCollideWithNull(t *testing.T) {
	epochDays := EncodeDate(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC))
	if epochDays == 0 {
		t.Fatal("epoch date encoded to 0, which collides with the null sentinel")
	}
}

func TestDatePartitionAppendGet(t *testing.T) {
	c := NewDatePartition("date")
	day := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	c.Append(&day)
	c.Append(nil)

	v, ok := c.Get(0)
	if !ok || !v.Equal(day) {
		t.Errorf("Get(0) = (%v, %v), want (%v, true)", v, ok, day)
	}
	if _, ok := c.Get(1); ok {
		t.Error("Get(1) ok = true, want false")
	}
	if !c.IsNull(1) {
		t.Error("IsNull(1) = false, want true")
	}
}
