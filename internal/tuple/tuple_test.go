package tuple

import (
	"testing"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/table"
)

func buildFixturePartition(t *testing.T) (*table.Schema, *table.Partition) {
	t.Helper()
	schema := &table.Schema{
		PrimaryKey: "id",
		Columns: []column.Metadata{
			{Name: "id", Type: column.String},
			{Name: "age", Type: column.Int},
			{Name: "country", Type: column.IndexedString},
		},
	}
	if err := schema.Validate(); err != nil {
		t.Fatalf("schema.Validate: %v", err)
	}
	tbl, err := table.NewTable(schema)
	if err != nil {
		t.Fatalf("table.NewTable: %v", err)
	}

	rows := []struct {
		id      string
		age     int32
		country string
	}{
		{"id_1", 20, "Switzerland"},
		{"id_2", 10, "Germany"},
		{"id_3", 20, "Switzerland"},
	}
	builder := tbl.NewPartitionBuilder()
	for _, r := range rows {
		age := r.age
		row := table.Row{Scalars: map[string]any{"id": r.id, "age": age, "country": r.country}}
		if err := builder.AppendRow(row); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	p := builder.Finalize()
	if err := tbl.AddPartition(p); err != nil {
		t.Fatalf("AddPartition: %v", err)
	}
	return schema, p
}

func TestDescriptorOverwriteDecodeRoundTrip(t *testing.T) {
	schema, p := buildFixturePartition(t)
	desc, err := NewDescriptor(schema, []string{"age", "country"})
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}

	factory := NewTupleFactory(desc)
	tup := factory.AllocateOne()
	if err := Overwrite(tup, desc, p, 1); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	ageField, _ := desc.FieldByName("age")
	age, err := Decode(tup, ageField, p)
	if err != nil {
		t.Fatalf("Decode age: %v", err)
	}
	if age != int32(10) {
		t.Errorf("age = %v, want 10", age)
	}

	countryField, _ := desc.FieldByName("country")
	country, err := Decode(tup, countryField, p)
	if err != nil {
		t.Fatalf("Decode country: %v", err)
	}
	if country != "Germany" {
		t.Errorf("country = %v, want Germany", country)
	}
}

func TestDescriptorRejectsSequenceColumn(t *testing.T) {
	schema := &table.Schema{
		PrimaryKey: "id",
		Columns:    []column.Metadata{{Name: "id", Type: column.String}},
		SequenceColumns: []table.SequenceColumn{
			{Name: "main", Alphabet: alphabet.Nuc},
		},
	}
	if _, err := NewDescriptor(schema, []string{"main"}); err == nil {
		t.Error("NewDescriptor over a sequence column should fail")
	}
}

func TestComparatorOrdersByMultipleFields(t *testing.T) {
	schema, p := buildFixturePartition(t)
	desc, err := NewDescriptor(schema, []string{"age", "id"})
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}

	factory := NewTupleFactory(desc)
	rows := []int{0, 1, 2}
	tuples := make([]Tuple, len(rows))
	for i, row := range rows {
		tup := factory.AllocateOne()
		if err := Overwrite(tup, desc, p, row); err != nil {
			t.Fatalf("Overwrite: %v", err)
		}
		tuples[i] = tup
	}

	cmp, err := NewComparator(desc, p.Interner(), []OrderField{
		{Name: "age", Ascending: true},
		{Name: "id", Ascending: true},
	}, nil)
	if err != nil {
		t.Fatalf("NewComparator: %v", err)
	}

	// row 1 (age 10) sorts before rows 0/2 (age 20 each); within the
	// age-20 tie, id_1 sorts before id_3 via the STRING tie-break field.
	if !cmp.Less(tuples[1], tuples[0]) {
		t.Error("age 10 row should sort before an age 20 row")
	}
	if !cmp.Less(tuples[0], tuples[2]) {
		t.Error("id_1 should sort before id_3 when age ties")
	}
	if cmp.Less(tuples[0], tuples[0]) {
		t.Error("a tuple must not be Less than itself")
	}
}

func TestComparatorRandomizeSeedIsDeterministic(t *testing.T) {
	schema, p := buildFixturePartition(t)
	desc, err := NewDescriptor(schema, []string{"age"})
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}
	factory := NewTupleFactory(desc)
	a := factory.AllocateOne()
	b := factory.AllocateOne()
	if err := Overwrite(a, desc, p, 0); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if err := Overwrite(b, desc, p, 1); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	seed := uint64(42)
	cmp1, _ := NewComparator(desc, p.Interner(), nil, &seed)
	cmp2, _ := NewComparator(desc, p.Interner(), nil, &seed)
	if cmp1.Less(a, b) != cmp2.Less(a, b) {
		t.Error("randomizeSeed tie-break should be a deterministic function of seed")
	}
}

func TestCopyTupleIsIndependentOfArena(t *testing.T) {
	schema, p := buildFixturePartition(t)
	desc, err := NewDescriptor(schema, []string{"age"})
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}
	factory := NewTupleFactory(desc)
	tup := factory.AllocateOne()
	if err := Overwrite(tup, desc, p, 0); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	cp := factory.CopyTuple(tup)
	for i := range tup {
		tup[i] = 0xFF
	}
	if Equal(cp, tup) {
		t.Error("CopyTuple's result must not alias the source arena slice")
	}

	ageField, _ := desc.FieldByName("age")
	age, err := Decode(cp, ageField, p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if age != int32(20) {
		t.Errorf("age = %v, want 20 (copy should be unaffected by later arena writes)", age)
	}
}

