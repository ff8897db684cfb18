package column

import "testing"

func TestZstdStringPartitionAppendGet(t *testing.T) {
	c, err := NewZstdStringPartition("submitting_lab", nil)
	if err != nil {
		t.Fatalf("NewZstdStringPartition() error = %v", err)
	}
	defer c.Close()

	long := strPtr("National Institute for Viral Disease Control and Prevention, China CDC")
	empty := strPtr("")
	c.Append(long)
	c.Append(nil)
	c.Append(empty)

	v, ok, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if !ok || v != *long {
		t.Errorf("Get(0) = (%q, %v), want (%q, true)", v, ok, *long)
	}

	_, ok, err = c.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}
	if ok {
		t.Error("Get(1) ok = true, want false (null)")
	}
	if !c.IsNull(1) {
		t.Error("IsNull(1) = false, want true")
	}

	v, ok, err = c.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if !ok || v != "" {
		t.Errorf("Get(2) = (%q, %v), want (\"\", true) for a non-null empty string", v, ok)
	}
}

func TestZstdStringPartitionWithDictionary(t *testing.T) {
	dict := []byte("National Institute for Viral Disease Control and Prevention")
	c, err := NewZstdStringPartition("submitting_lab", dict)
	if err != nil {
		t.Fatalf("NewZstdStringPartition() error = %v", err)
	}
	defer c.Close()

	value := strPtr("National Institute for Viral Disease Control and Prevention, Beijing")
	c.Append(value)

	v, ok, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if !ok || v != *value {
		t.Errorf("Get(0) = (%q, %v), want (%q, true)", v, ok, *value)
	}
}
