package column

import "testing"

func int32Ptr(v int32) *int32 { return &v }

func TestIntPartitionAppendGet(t *testing.T) {
	c := NewIntPartition("age")
	c.Append(int32Ptr(42))
	c.Append(int32Ptr(-7))
	c.Append(nil)

	v, ok := c.Get(0)
	if v != 42 || !ok {
		t.Errorf("Get(0) = (%d, %v), want (42, true)", v, ok)
	}
	v, ok = c.Get(1)
	if v != -7 || !ok {
		t.Errorf("Get(1) = (%d, %v), want (-7, true)", v, ok)
	}
	v, ok = c.Get(2)
	if ok {
		t.Errorf("Get(2) = (%d, %v), want ok=false", v, ok)
	}
	if !c.IsNull(2) {
		t.Error("IsNull(2) = false, want true")
	}
}

func TestIntNullSentinelNotAmbiguousWithMinInt32(t *testing.T) {
	// The sentinel for null is INT32_MIN, so a genuine INT32_MIN value
	// cannot be stored distinguishably from null. This matches spec.md §6;
	// callers that need the full int32 range must use a nullable wrapper
	// upstream of this column.
	c := NewIntPartition("x")
	c.Append(int32Ptr(IntNull))
	if !c.IsNull(0) {
		t.Error("IsNull(0) = false, want true for INT32_MIN value")
	}
}

func TestIntPartitionShrinkToFit(t *testing.T) {
	c := NewIntPartition("x")
	for i := int32(0); i < 5; i++ {
		c.Append(int32Ptr(i))
	}
	c.ShrinkToFit()
	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
}
