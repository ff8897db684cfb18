package action

import (
	"strconv"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/sequencestore"
	"github.com/nishad/silo/internal/table"
)

const opMutations errors.Op = "action.executeMutations"

// executeMutations implements spec.md §4.D's NucMutations/AAMutations
// actions: for each position of each resolved sequence column, count how
// many filtered rows carry each non-reference symbol and divide by the
// filtered+covered row count at that position, emitting one entry per
// mutation whose proportion meets MinProportion.
func (a *Action) executeMutations(t *table.Table, bitmaps []*bitmapx.Bitmap, isAA bool) ([]Entry, error) {
	columns, err := a.resolveMutationColumns(t.Schema, isAA)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, sc := range columns {
		length := len(sc.Reference)
		// counts[position][symbol] accumulates the actual (reference-
		// adapted) per-symbol row count across every partition.
		counts := make([][]uint64, length)
		covered := make([]uint64, length)
		for p := range counts {
			counts[p] = make([]uint64, sc.Alphabet.Count())
		}

		for pi, part := range t.Partitions {
			store := part.Sequences[sc.Name]
			filter := bitmaps[pi]
			if filter.IsEmpty() {
				continue
			}
			for position := 0; position < length; position++ {
				localRef := store.LocalReference[position]
				coveredFiltered := filter.Clone()
				coveredFiltered.And(store.Coverage.IsInCoveredRegion(position, sequencestore.Covered))
				coveredCount := coveredFiltered.Cardinality()
				covered[position] += coveredCount

				var nonLocalRefTotal uint64
				for _, sym := range sc.Alphabet.Symbols {
					if sym == localRef {
						continue
					}
					matching := store.Vertical.Bitmap(position, sym).Clone()
					matching.And(filter)
					n := matching.Cardinality()
					counts[position][sym] += n
					nonLocalRefTotal += n
				}
				counts[position][localRef] += coveredCount - nonLocalRefTotal
			}
		}

		for position := 0; position < length; position++ {
			if covered[position] == 0 {
				continue
			}
			ref := sc.Reference[position]
			for _, sym := range sc.Alphabet.ValidMutationSymbols {
				if sym == ref {
					continue
				}
				count := counts[position][sym]
				if count == 0 {
					continue
				}
				proportion := float64(count) / float64(covered[position])
				if proportion < a.MinProportion {
					continue
				}
				mutation := string(sc.Alphabet.SymbolToChar(ref)) +
					strconv.Itoa(position+1) +
					string(sc.Alphabet.SymbolToChar(sym))
				entries = append(entries, Entry{
					"mutation":     mutation,
					"proportion":   proportion,
					"count":        int(count),
					"sequenceName": sc.Name,
				})
			}
		}
	}

	sortEntries(entries, a.OrderBy, a.RandomizeSeed)
	return entries, nil
}

// resolveMutationColumns resolves NucMutations' single optional
// SequenceName (defaulting to the table's default nucleotide column) or
// AAMutations' SequenceNames list (defaulting to every amino-acid column
// declared in the schema when empty).
func (a *Action) resolveMutationColumns(schema *table.Schema, isAA bool) ([]table.SequenceColumn, error) {
	alphabetName := alphabet.Nuc.Name
	if isAA {
		alphabetName = alphabet.AA.Name
	}

	if !isAA {
		if a.SequenceName == "" {
			sc, ok := schema.DefaultSequenceColumn(alphabetName)
			if !ok {
				return nil, errors.BadRequest(opMutations, "no default nucleotide sequence column and none named")
			}
			return []table.SequenceColumn{sc}, nil
		}
		sc, ok := schema.SequenceColumnByName(a.SequenceName)
		if !ok {
			return nil, errors.BadRequest(opMutations, "unknown sequence column "+a.SequenceName)
		}
		return []table.SequenceColumn{sc}, nil
	}

	if len(a.SequenceNames) == 0 {
		var out []table.SequenceColumn
		for _, sc := range schema.SequenceColumns {
			if sc.Alphabet.Name == alphabetName {
				out = append(out, sc)
			}
		}
		return out, nil
	}
	out := make([]table.SequenceColumn, 0, len(a.SequenceNames))
	for _, name := range a.SequenceNames {
		sc, ok := schema.SequenceColumnByName(name)
		if !ok {
			return nil, errors.BadRequest(opMutations, "unknown sequence column "+name)
		}
		out = append(out, sc)
	}
	return out, nil
}
