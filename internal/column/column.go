// Package column implements Component C (spec.md §2, §3): the typed column
// partitions a table is built from. Each type owns its own nullability
// encoding; there is no shared "nullable wrapper" type because the null
// sentinel differs per type (spec.md §3, §6).
package column

// Type is the closed set of column types a schema may declare.
type Type uint8

const (
	Bool Type = iota
	Int
	Float
	Date
	String
	IndexedString
	ZstdCompressedString
	NucSequence
	AASequence
)

// String returns the schema-facing name of the type.
func (t Type) String() string {
	switch t {
	case Bool:
		return "BOOL"
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	case Date:
		return "DATE"
	case String:
		return "STRING"
	case IndexedString:
		return "INDEXED_STRING"
	case ZstdCompressedString:
		return "ZSTD_COMPRESSED_STRING"
	case NucSequence:
		return "NUC_SEQUENCE"
	case AASequence:
		return "AA_SEQUENCE"
	default:
		return "UNKNOWN"
	}
}

// Metadata is the part of a column shared across all of a table's
// partitions: its name, type, and type-specific shared state (a zstd
// dictionary, a sequence column's reference symbols).
type Metadata struct {
	Name string
	Type Type

	// ZstdDictionary is set only for ZstdCompressedString columns.
	ZstdDictionary []byte

	// ReferenceSequence is set only for NucSequence/AASequence columns: the
	// global reference symbols for the alphabet, before any per-partition
	// local-reference adaptation (spec.md §3).
	ReferenceSequence string
	// IsDefaultSequence marks a sequence column as the table's default for
	// its alphabet, so filter nodes may omit the sequence name.
	IsDefaultSequence bool
}

// Partition is satisfied by every non-sequence column partition type. It
// lets a table partition hold heterogeneous columns in one slice indexed
// by schema order; callers that need type-specific behavior (Get,
// Lookup, ...) type-assert back to the concrete type named by the
// column's Metadata.Type.
type Partition interface {
	Len() int
}
