package column

import "testing"

func strPtr(s string) *string { return &s }

func TestIndexedStringPartitionAppendGet(t *testing.T) {
	c := NewIndexedStringPartition("pango_lineage")
	c.Append(strPtr("B.1.1.7"))
	c.Append(strPtr("B.1.617.2"))
	c.Append(nil)
	c.Append(strPtr("B.1.1.7"))

	v, ok := c.Get(0)
	if !ok || v != "B.1.1.7" {
		t.Errorf("Get(0) = (%q, %v), want (\"B.1.1.7\", true)", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) ok = true, want false (null)")
	}
	if !c.IsNull(2) {
		t.Error("IsNull(2) = false, want true")
	}
}

func TestIndexedStringPartitionLookup(t *testing.T) {
	c := NewIndexedStringPartition("pango_lineage")
	c.Append(strPtr("B.1.1.7"))
	c.Append(strPtr("B.1.617.2"))
	c.Append(nil)
	c.Append(strPtr("B.1.1.7"))

	bm := c.Lookup("B.1.1.7")
	if bm == nil {
		t.Fatal("Lookup(\"B.1.1.7\") = nil")
	}
	if bm.Cardinality() != 2 || !bm.Contains(0) || !bm.Contains(3) {
		t.Errorf("Lookup(\"B.1.1.7\") bitmap = %v, want rows {0,3}", bm.ToArray())
	}

	if c.Lookup("B.1.351") != nil {
		t.Error("Lookup of a value never appended returned a non-nil bitmap")
	}
}

func TestIndexedStringPartitionValues(t *testing.T) {
	c := NewIndexedStringPartition("country")
	c.Append(strPtr("Germany"))
	c.Append(strPtr("Switzerland"))
	c.Append(strPtr("Germany"))

	values := c.Values()
	if len(values) != 2 {
		t.Fatalf("Values() = %v, want 2 distinct values", values)
	}
}
