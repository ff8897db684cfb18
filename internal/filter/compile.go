package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/operator"
	"github.com/nishad/silo/internal/sequencestore"
	"github.com/nishad/silo/internal/table"
)

const opCompile errors.Op = "filter.Compile"

const dateLayout = "2006-01-02"

// Compile lowers a filter-expression tree into a bitmap operator tree
// against one partition, per spec.md §4.B's contract:
// compile(table, partition, mode) → Operator. mode propagates through
// children: Not flips UPPER_BOUND/LOWER_BOUND, And/Or/N-Of pass it
// unchanged, Maybe forces UPPER_BOUND, Exact forces EXACT.
func Compile(t *table.Table, p *table.Partition, mode sequencestore.Mode, node *Node) (operator.Operator, error) {
	if node == nil {
		return nil, errors.BadRequest(opCompile, "filter expression: missing node")
	}
	rowCount := uint64(p.RowCount())

	switch node.Type {
	case KindTrue:
		return &operator.Full{RowCountVal: rowCount}, nil
	case KindFalse:
		return &operator.Empty{RowCountVal: rowCount}, nil

	case KindAnd:
		children, err := compileChildren(t, p, mode, node.Children)
		if err != nil {
			return nil, err
		}
		return &operator.Intersection{Positive: children, RowCountVal: rowCount}, nil

	case KindOr:
		children, err := compileChildren(t, p, mode, node.Children)
		if err != nil {
			return nil, err
		}
		return &operator.Union{Children: children, RowCountVal: rowCount}, nil

	case KindNot:
		if node.Child == nil {
			return nil, errors.BadRequest(opCompile, "Not: missing child")
		}
		child, err := Compile(t, p, mode.Flip(), node.Child)
		if err != nil {
			return nil, err
		}
		return child.Negate(), nil

	case KindNOf:
		if node.N < 0 {
			return nil, errors.BadRequest(opCompile, "N-Of: n must be >= 0")
		}
		children, err := compileChildren(t, p, mode, node.Children)
		if err != nil {
			return nil, err
		}
		return &operator.Threshold{
			Positive:     children,
			N:            node.N,
			MatchExactly: node.MatchExactly,
			RowCountVal:  rowCount,
		}, nil

	case KindMaybe:
		if node.Child == nil {
			return nil, errors.BadRequest(opCompile, "Maybe: missing child")
		}
		return Compile(t, p, sequencestore.UpperBound, node.Child)

	case KindExact:
		if node.Child == nil {
			return nil, errors.BadRequest(opCompile, "Exact: missing child")
		}
		return Compile(t, p, sequencestore.Exact, node.Child)

	case KindSymbolEquals:
		return compileSymbolEquals(t, p, mode, node, rowCount)
	case KindSymbolInSet:
		return compileSymbolInSet(t, p, node, rowCount)
	case KindHasMutation:
		return compileHasMutation(t, p, mode, node, rowCount)
	case KindHasInsertion:
		return compileHasInsertion(t, p, node, rowCount)

	case KindDateBetween:
		return compileDateBetween(p, node, rowCount)
	case KindStringEquals:
		return compileStringEquals(t, p, node, rowCount)
	case KindIntEquals:
		return compileIntEquals(p, node, rowCount)
	case KindIntBetween:
		return compileIntBetween(p, node, rowCount)
	case KindFloatEquals:
		return compileFloatEquals(p, node, rowCount)
	case KindFloatBetween:
		return compileFloatBetween(p, node, rowCount)
	case KindBoolEquals:
		return compileBoolEquals(p, node, rowCount)
	case KindPangoLineage:
		return compilePangoLineage(p, node, rowCount)

	default:
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("unknown filter node type %q", node.Type))
	}
}

func compileChildren(t *table.Table, p *table.Partition, mode sequencestore.Mode, nodes []*Node) ([]operator.Operator, error) {
	out := make([]operator.Operator, 0, len(nodes))
	for _, n := range nodes {
		child, err := Compile(t, p, mode, n)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// resolveSequenceColumn finds the sequence store a filter node should run
// against: the named store, or (name == "") the schema's unique default
// sequence column. A schema with zero or more than one default is
// ambiguous when no name is given — BadRequest names the offending field,
// per spec.md §4.B's validation contract.
func resolveSequenceColumn(t *table.Table, p *table.Partition, name string) (*sequencestore.SequenceStore, error) {
	if name != "" {
		if _, ok := t.Schema.SequenceColumnByName(name); !ok {
			return nil, errors.BadRequest(opCompile, fmt.Sprintf("unknown sequence column %q", name))
		}
		return p.Sequences[name], nil
	}
	var found *table.SequenceColumn
	for i := range t.Schema.SequenceColumns {
		sc := t.Schema.SequenceColumns[i]
		if sc.IsDefaultSequence {
			if found != nil {
				return nil, errors.BadRequest(opCompile, "sequenceName: ambiguous default sequence column, multiple columns marked default")
			}
			found = &sc
		}
	}
	if found == nil {
		return nil, errors.BadRequest(opCompile, "sequenceName: no default sequence column declared")
	}
	return p.Sequences[found.Name], nil
}

func symbolFromChar(a *alphabet.Alphabet, field, ch string) (alphabet.Symbol, error) {
	if len(ch) != 1 {
		return 0, errors.BadRequest(opCompile, fmt.Sprintf("%s: expected a single character, got %q", field, ch))
	}
	sym, ok := a.CharToSymbol(ch[0])
	if !ok {
		return 0, errors.BadRequest(opCompile, fmt.Sprintf("%s: %q is not a valid %s symbol", field, ch, a.Name))
	}
	return sym, nil
}

func validatePosition(store *sequencestore.SequenceStore, position1Based int) (int, error) {
	position := position1Based - 1
	if position < 0 || position >= store.Length() {
		return 0, errors.BadRequest(opCompile, fmt.Sprintf("position: %d out of range [1, %d]", position1Based, store.Length()))
	}
	return position, nil
}

func compileSymbolEquals(t *table.Table, p *table.Partition, mode sequencestore.Mode, node *Node, rowCount uint64) (operator.Operator, error) {
	store, err := resolveSequenceColumn(t, p, node.SequenceName)
	if err != nil {
		return nil, err
	}
	position, err := validatePosition(store, node.Position)
	if err != nil {
		return nil, err
	}
	sym, err := symbolFromChar(store.Alphabet, "symbol", node.Symbol)
	if err != nil {
		return nil, err
	}
	return &operator.BitmapProducer{
		Fn:          func() *bitmapx.Bitmap { return store.SymbolEquals(position, sym, mode) },
		RowCountVal: rowCount,
	}, nil
}

func compileSymbolInSet(t *table.Table, p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	store, err := resolveSequenceColumn(t, p, node.SequenceName)
	if err != nil {
		return nil, err
	}
	position, err := validatePosition(store, node.Position)
	if err != nil {
		return nil, err
	}
	symbols := make([]alphabet.Symbol, 0, len(node.Symbols))
	for _, s := range node.Symbols {
		sym, err := symbolFromChar(store.Alphabet, "symbols", s)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return &operator.BitmapProducer{
		Fn:          func() *bitmapx.Bitmap { return store.SymbolEqualsSet(position, symbols) },
		RowCountVal: rowCount,
	}, nil
}

func compileHasMutation(t *table.Table, p *table.Partition, mode sequencestore.Mode, node *Node, rowCount uint64) (operator.Operator, error) {
	store, err := resolveSequenceColumn(t, p, node.SequenceName)
	if err != nil {
		return nil, err
	}
	position, err := validatePosition(store, node.Position)
	if err != nil {
		return nil, err
	}
	return &operator.BitmapProducer{
		Fn:          func() *bitmapx.Bitmap { return store.HasMutationMode(position, mode) },
		RowCountVal: rowCount,
	}, nil
}

func compileHasInsertion(t *table.Table, p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	store, err := resolveSequenceColumn(t, p, node.SequenceName)
	if err != nil {
		return nil, err
	}
	position, err := validatePosition(store, node.Position)
	if err != nil {
		return nil, err
	}
	if node.Regex {
		re, err := regexp.Compile(node.Pattern)
		if err != nil {
			return nil, errors.BadRequest(opCompile, fmt.Sprintf("pattern: invalid regex %q: %v", node.Pattern, err))
		}
		return &operator.BitmapProducer{
			Fn:          func() *bitmapx.Bitmap { return store.Insertions.Search(position, re) },
			RowCountVal: rowCount,
		}, nil
	}
	return &operator.IndexScan{
		Bitmap:      store.Insertions.Lookup(position, node.Pattern),
		RowCountVal: rowCount,
	}, nil
}

func compileDateBetween(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Date {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not a DATE column", node.Column))
	}
	var from, to *time.Time
	if node.DateFrom != nil {
		t, err := time.Parse(dateLayout, *node.DateFrom)
		if err != nil {
			return nil, errors.BadRequest(opCompile, fmt.Sprintf("from: invalid date %q", *node.DateFrom))
		}
		from = &t
	}
	if node.DateTo != nil {
		t, err := time.Parse(dateLayout, *node.DateTo)
		if err != nil {
			return nil, errors.BadRequest(opCompile, fmt.Sprintf("to: invalid date %q", *node.DateTo))
		}
		to = &t
	}
	col := p.Dates[node.Column]
	match := func(row uint32) bool {
		v, ok := col.Get(int(row))
		if !ok {
			return false
		}
		if from != nil && v.Before(*from) {
			return false
		}
		if to != nil && v.After(*to) {
			return false
		}
		return true
	}
	return &operator.Selection{
		Predicates:  []operator.Predicate{{Match: match}},
		RowCountVal: rowCount,
	}, nil
}

func compileStringEquals(t *table.Table, p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	if node.StringValue == nil {
		return nil, errors.BadRequest(opCompile, "StringEquals: missing value")
	}
	meta, ok := p.Schema().Column(node.Column)
	if !ok {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("unknown column %q", node.Column))
	}
	switch meta.Type {
	case column.IndexedString:
		b := p.Indexed[node.Column].Lookup(*node.StringValue)
		if b == nil {
			return &operator.Empty{RowCountVal: rowCount}, nil
		}
		return &operator.IndexScan{Bitmap: b, RowCountVal: rowCount}, nil
	case column.String:
		fp := t.Interner().Intern(*node.StringValue)
		col := p.Strings[node.Column]
		match := func(row uint32) bool { return col.Fingerprint(int(row)) == fp }
		return &operator.Selection{
			Predicates:  []operator.Predicate{{Match: match}},
			RowCountVal: rowCount,
		}, nil
	default:
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: StringEquals requires STRING or INDEXED_STRING, got %s", node.Column, meta.Type))
	}
}

func compileIntEquals(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Int {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not an INT column", node.Column))
	}
	col := p.Ints[node.Column]
	if node.IntValue == nil {
		match := func(row uint32) bool { return col.IsNull(int(row)) }
		return &operator.Selection{Predicates: []operator.Predicate{{Match: match, Inverse: func(row uint32) bool { return !col.IsNull(int(row)) }}}, RowCountVal: rowCount}, nil
	}
	target := *node.IntValue
	match := func(row uint32) bool {
		v, ok := col.Get(int(row))
		return ok && v == target
	}
	inverse := func(row uint32) bool {
		v, ok := col.Get(int(row))
		return !ok || v != target
	}
	return &operator.Selection{Predicates: []operator.Predicate{{Match: match, Inverse: inverse}}, RowCountVal: rowCount}, nil
}

func compileIntBetween(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Int {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not an INT column", node.Column))
	}
	col := p.Ints[node.Column]
	match := func(row uint32) bool {
		v, ok := col.Get(int(row))
		if !ok {
			return false
		}
		if node.IntFrom != nil && v < *node.IntFrom {
			return false
		}
		if node.IntTo != nil && v > *node.IntTo {
			return false
		}
		return true
	}
	return &operator.Selection{Predicates: []operator.Predicate{{Match: match}}, RowCountVal: rowCount}, nil
}

func compileFloatEquals(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Float {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not a FLOAT column", node.Column))
	}
	col := p.Floats[node.Column]
	match := func(row uint32) bool {
		v, _ := col.Get(int(row))
		if node.FloatValue == nil {
			return col.IsNull(int(row))
		}
		return column.EqualNullAware(v, *node.FloatValue)
	}
	return &operator.Selection{Predicates: []operator.Predicate{{Match: match}}, RowCountVal: rowCount}, nil
}

func compileFloatBetween(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Float {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not a FLOAT column", node.Column))
	}
	col := p.Floats[node.Column]
	match := func(row uint32) bool {
		v, ok := col.Get(int(row))
		if !ok {
			return false
		}
		if node.FloatFrom != nil && v < *node.FloatFrom {
			return false
		}
		if node.FloatTo != nil && v > *node.FloatTo {
			return false
		}
		return true
	}
	return &operator.Selection{Predicates: []operator.Predicate{{Match: match}}, RowCountVal: rowCount}, nil
}

func compileBoolEquals(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.Bool {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: not a BOOL column", node.Column))
	}
	col := p.Bools[node.Column]
	match := func(row uint32) bool {
		v, ok := col.Get(int(row))
		if node.BoolValue == nil {
			return !ok
		}
		return ok && v == *node.BoolValue
	}
	return &operator.Selection{Predicates: []operator.Predicate{{Match: match}}, RowCountVal: rowCount}, nil
}

// compilePangoLineage matches an INDEXED_STRING lineage column exactly, or
// (includeSublineages) any value equal to or dotted-prefixed by it (e.g.
// "B.1" covers "B.1" and "B.1.1.7" but not "B.11"), per spec.md §4.B.
func compilePangoLineage(p *table.Partition, node *Node, rowCount uint64) (operator.Operator, error) {
	if node.StringValue == nil {
		return nil, errors.BadRequest(opCompile, "PangoLineage: missing value")
	}
	meta, ok := p.Schema().Column(node.Column)
	if !ok || meta.Type != column.IndexedString {
		return nil, errors.BadRequest(opCompile, fmt.Sprintf("column %q: PangoLineage requires an INDEXED_STRING column", node.Column))
	}
	col := p.Indexed[node.Column]
	target := *node.StringValue

	if !node.IncludeSublineages {
		b := col.Lookup(target)
		if b == nil {
			return &operator.Empty{RowCountVal: rowCount}, nil
		}
		return &operator.IndexScan{Bitmap: b, RowCountVal: rowCount}, nil
	}

	prefix := target + "."
	toUnion := make([]*bitmapx.Bitmap, 0)
	for _, v := range col.Values() {
		if v == target || strings.HasPrefix(v, prefix) {
			if b := col.Lookup(v); b != nil {
				toUnion = append(toUnion, b)
			}
		}
	}
	return &operator.BitmapProducer{
		Fn:          func() *bitmapx.Bitmap { return bitmapx.FastUnion(toUnion...) },
		RowCountVal: rowCount,
	}, nil
}
