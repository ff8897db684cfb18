package column

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestBoolPartitionAppendGet(t *testing.T) {
	c := NewBoolPartition("is_revision")
	c.Append(boolPtr(true))
	c.Append(boolPtr(false))
	c.Append(nil)

	tests := []struct {
		row      int
		wantVal  bool
		wantOk   bool
		wantNull bool
	}{
		{0, true, true, false},
		{1, false, true, false},
		{2, false, false, true},
	}
	for _, tt := range tests {
		v, ok := c.Get(tt.row)
		if v != tt.wantVal || ok != tt.wantOk {
			t.Errorf("Get(%d) = (%v, %v), want (%v, %v)", tt.row, v, ok, tt.wantVal, tt.wantOk)
		}
		if c.IsNull(tt.row) != tt.wantNull {
			t.Errorf("IsNull(%d) = %v, want %v", tt.row, c.IsNull(tt.row), tt.wantNull)
		}
	}
}

func TestBoolPartitionLen(t *testing.T) {
	c := NewBoolPartition("x")
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
	c.Append(boolPtr(true))
	c.Append(nil)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestBoolPartitionShrinkToFit(t *testing.T) {
	c := NewBoolPartition("x")
	for i := 0; i < 10; i++ {
		c.Append(boolPtr(i%2 == 0))
	}
	c.ShrinkToFit()
	if c.Len() != 10 {
		t.Fatalf("Len() after ShrinkToFit = %d, want 10", c.Len())
	}
	for i := 0; i < 10; i++ {
		v, ok := c.Get(i)
		if !ok || v != (i%2 == 0) {
			t.Errorf("Get(%d) after ShrinkToFit = (%v, %v)", i, v, ok)
		}
	}
}
