package action

import (
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/tuple"
)

// nullStringFingerprint is the FieldString sentinel packed for a nil
// string value: 16 bytes of 0xFF. Real fingerprints are an 8-byte prefix
// of the raw string bytes followed by a seahash digest of the whole string
// (column.SiloString), so an all-0xFF prefix sorts after every real value
// under compareStringField's byte-wise prefix comparison — giving null-last ascending
// ordering for free, without inventing a nullability bit the tuple
// package's STRING field doesn't otherwise carry.
var nullStringFingerprint = func() column.SiloString {
	var fp column.SiloString
	for i := range fp {
		fp[i] = 0xFF
	}
	return fp
}()

// sortEntries orders entries by orderBy's fields, reusing
// internal/tuple's packed-tuple Comparator (spec.md §4.E) — the same
// fingerprint-fast-path/null-last/NaN-last ordering and seahash tie-break
// machinery the spec names as the engine's one ordering mechanism.
//
// Actions here never read back a Descriptor from a table.Schema, because
// their Entries mix real column values with synthetic fields no column
// represents at all (Aggregated's "count", NucMutations' "proportion",
// InsertionAggregation's "position", ...). So the Descriptor is inferred
// on the fly from each entry's decoded Go values (bool/int/int32/float64/
// time.Time/string), and every entry is packed into a tuple using the
// same byte layout Overwrite uses for real columns, before handing the
// whole thing to tuple.Comparator.Less.
func sortEntries(entries []Entry, orderBy []OrderBy, seed *uint64) {
	if len(entries) < 2 {
		return
	}

	desc := buildEntryDescriptor(entries, orderBy)
	interner := column.NewInterner()
	factory := tuple.NewTupleFactory(desc)
	tuples := factory.AllocateMany(len(entries))
	for i, e := range entries {
		packEntry(tuples[i], desc, e, interner)
	}

	orderFields := make([]tuple.OrderField, len(orderBy))
	for i, ob := range orderBy {
		orderFields[i] = tuple.OrderField{Name: ob.Field, Ascending: ob.Ascending}
	}
	cmp, err := tuple.NewComparator(desc, interner, orderFields, seed)
	if err != nil {
		// buildEntryDescriptor always includes every orderBy field name,
		// so NewComparator's "unknown field" case cannot trigger here.
		return
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return cmp.Less(tuples[idx[i]], tuples[idx[j]])
	})

	sorted := make([]Entry, len(entries))
	for i, id := range idx {
		sorted[i] = entries[id]
	}
	copy(entries, sorted)
}

// buildEntryDescriptor lays out one tuple field per orderBy field (so
// randomizeSeed's tie-break, which hashes the Comparator's own tuple
// bytes, still varies row to row) followed by every remaining key of the
// first entry in a deterministic (sorted) order. Each field's Kind is
// inferred from the first non-nil value found for that name across
// entries; an all-nil field defaults to FieldInt, which is harmless since
// every value packed for it will then be the null sentinel and compare
// equal to every other null.
func buildEntryDescriptor(entries []Entry, orderBy []OrderBy) *tuple.Descriptor {
	seen := make(map[string]bool)
	names := make([]string, 0, len(orderBy))
	for _, ob := range orderBy {
		if !seen[ob.Field] {
			seen[ob.Field] = true
			names = append(names, ob.Field)
		}
	}
	if len(entries) > 0 {
		extra := make([]string, 0, len(entries[0]))
		for k := range entries[0] {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		names = append(names, extra...)
	}

	fields := make([]tuple.Field, len(names))
	offset := 0
	for i, name := range names {
		kind := tuple.FieldInt
		for _, e := range entries {
			if k, ok := inferFieldKind(e[name]); ok {
				kind = k
				break
			}
		}
		fields[i] = tuple.Field{Name: name, Kind: kind, Offset: offset}
		offset += kind.Size()
	}
	return &tuple.Descriptor{Fields: fields, Size: offset}
}

func inferFieldKind(v any) (tuple.FieldKind, bool) {
	switch v.(type) {
	case bool:
		return tuple.FieldBool, true
	case int32, int:
		return tuple.FieldInt, true
	case float64:
		return tuple.FieldFloat, true
	case time.Time:
		return tuple.FieldDate, true
	case string:
		return tuple.FieldString, true
	default:
		return 0, false
	}
}

func packEntry(t tuple.Tuple, desc *tuple.Descriptor, e Entry, interner *column.Interner) {
	for _, field := range desc.Fields {
		buf := t[field.Offset : field.Offset+field.Kind.Size()]
		packField(buf, field.Kind, e[field.Name], interner)
	}
}

// packField writes v into buf using field.Kind's byte layout, matching
// internal/tuple.Overwrite's conventions exactly so tuple.Comparator
// compares these entry-derived tuples the same way it compares
// column-derived ones.
func packField(buf []byte, kind tuple.FieldKind, v any, interner *column.Interner) {
	switch kind {
	case tuple.FieldBool:
		switch bv := v.(type) {
		case bool:
			if bv {
				buf[0] = 0x81
			} else {
				buf[0] = 0x80
			}
		default:
			buf[0] = 0x00
		}
	case tuple.FieldInt:
		n := column.IntNull
		switch iv := v.(type) {
		case int32:
			n = iv
		case int:
			n = int32(iv)
		}
		binary.LittleEndian.PutUint32(buf, uint32(n))
	case tuple.FieldFloat:
		f := math.NaN()
		if fv, ok := v.(float64); ok {
			f = fv
		}
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
	case tuple.FieldDate:
		var days int32
		if tv, ok := v.(time.Time); ok {
			days = column.EncodeDate(tv)
		}
		binary.LittleEndian.PutUint32(buf, uint32(days))
	case tuple.FieldString:
		fp := nullStringFingerprint
		if sv, ok := v.(string); ok {
			fp = interner.Intern(sv)
		}
		copy(buf, fp[:])
	}
}
