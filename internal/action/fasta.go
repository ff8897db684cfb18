package action

import (
	"strings"

	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opFasta errors.Op = "action.executeFasta"

// executeFasta implements spec.md §4.D's Fasta/FastaAligned actions:
// reconstruct, for every filtered row, the requested sequence column(s)
// plus any additionalFields, one Entry per row.
//
// FastaAligned reconstructs via SequenceStore.ReconstructAligned, which
// always returns a string the same length as the reference (missing
// positions rendered as the alphabet's missing symbol) — the alignment
// invariant the "Aligned" name promises. Splicing insertion text into
// that string would break that invariant, so insertion overlay is done
// only for the unaligned Fasta action, which has no fixed-length
// contract to preserve; see DESIGN.md.
func (a *Action) executeFasta(t *table.Table, bitmaps []*bitmapx.Bitmap, aligned bool) ([]Entry, error) {
	columns, err := a.resolveInsertionColumns(t.Schema)
	if err != nil {
		return nil, err
	}
	if len(a.SequenceNames) == 0 && a.SequenceName != "" {
		sc, ok := t.Schema.SequenceColumnByName(a.SequenceName)
		if !ok {
			return nil, errors.BadRequest(opFasta, "unknown sequence column "+a.SequenceName)
		}
		columns = []table.SequenceColumn{sc}
	}
	if len(columns) == 0 {
		return nil, errors.BadRequest(opFasta, "no sequence column to reconstruct")
	}

	var entries []Entry
	for pi, p := range t.Partitions {
		it := bitmaps[pi].Iterator()
		for it.HasNext() {
			row := it.Next()
			entry := make(Entry, len(columns)+len(a.AdditionalFields))
			for _, sc := range columns {
				seq, err := reconstructSequence(p, sc, row, aligned)
				if err != nil {
					return nil, err
				}
				entry[sc.Name] = seq
			}
			for _, name := range a.AdditionalFields {
				v, err := readColumnValue(p, name, int(row))
				if err != nil {
					return nil, err
				}
				entry[name] = v
			}
			entries = append(entries, entry)
		}
	}

	sortEntries(entries, a.OrderBy, a.RandomizeSeed)
	return entries, nil
}

func reconstructSequence(p *table.Partition, sc table.SequenceColumn, row uint32, aligned bool) (string, error) {
	store, ok := p.Sequences[sc.Name]
	if !ok {
		return "", errors.QueryCompilation(opFasta, "sequence column "+sc.Name+" missing from partition")
	}
	symbols := store.ReconstructAligned(row)
	sequence := sc.Alphabet.DecodeString(symbols)
	if aligned {
		return sequence, nil
	}

	var b strings.Builder
	for position := 0; position < len(sequence); position++ {
		if text, ok := store.Insertions.RowText(position, row); ok {
			b.WriteString(text)
		}
		if store.Coverage.IsCoveredAt(row, position) {
			b.WriteByte(sequence[position])
		}
	}
	return b.String(), nil
}
