package bitmapx

import "testing"

func TestNewRange(t *testing.T) {
	b := NewRange(2, 5)
	for _, r := range []uint32{2, 3, 4} {
		if !b.Contains(r) {
			t.Errorf("expected bitmap to contain %d", r)
		}
	}
	if b.Contains(5) || b.Contains(1) {
		t.Error("bitmap should not contain values outside [2,5)")
	}
	if b.Cardinality() != 3 {
		t.Errorf("expected cardinality 3, got %d", b.Cardinality())
	}
}

func TestAndOrAndNot(t *testing.T) {
	a := NewRange(0, 10)
	b := NewRange(5, 15)

	intersection := a.Clone()
	intersection.And(b)
	if intersection.Cardinality() != 5 {
		t.Errorf("expected intersection cardinality 5, got %d", intersection.Cardinality())
	}

	union := a.Clone()
	union.Or(b)
	if union.Cardinality() != 15 {
		t.Errorf("expected union cardinality 15, got %d", union.Cardinality())
	}

	diff := a.Clone()
	diff.AndNot(b)
	if diff.Cardinality() != 5 {
		t.Errorf("expected diff cardinality 5, got %d", diff.Cardinality())
	}
	if diff.Contains(5) {
		t.Error("diff should not contain 5")
	}
}

func TestFlip(t *testing.T) {
	b := NewRange(2, 4)
	comp := b.Flip(0, 6)
	want := map[uint32]bool{0: true, 1: true, 4: true, 5: true}
	if comp.Cardinality() != uint64(len(want)) {
		t.Fatalf("expected cardinality %d, got %d", len(want), comp.Cardinality())
	}
	for v := range want {
		if !comp.Contains(v) {
			t.Errorf("expected complement to contain %d", v)
		}
	}
}

func TestFastUnion(t *testing.T) {
	a := NewRange(0, 3)
	b := NewRange(10, 13)
	c := NewRange(100000, 100003) // forces a second roaring container
	u := FastUnion(a, b, c)
	if u.Cardinality() != 9 {
		t.Errorf("expected cardinality 9, got %d", u.Cardinality())
	}
}

func TestFastIntersection(t *testing.T) {
	a := NewRange(0, 10)
	b := NewRange(5, 20)
	c := NewRange(7, 30)
	i := FastIntersection(a, b, c)
	if i.Cardinality() != 3 {
		t.Errorf("expected cardinality 3 ([7,10)), got %d", i.Cardinality())
	}
}

func TestRank(t *testing.T) {
	b := New()
	for _, v := range []uint32{1, 3, 5, 7} {
		b.Add(v)
	}
	if got := b.Rank(5); got != 3 {
		t.Errorf("expected rank(5) = 3, got %d", got)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	b := NewRange(0, 1000)
	b.Add(100000)

	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	restored := New()
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if !restored.Equals(b) {
		t.Error("restored bitmap should equal original")
	}
}

func TestIsEmpty(t *testing.T) {
	if !New().IsEmpty() {
		t.Error("new bitmap should be empty")
	}
	if NewRange(0, 1).IsEmpty() {
		t.Error("non-empty range should not be empty")
	}
}
