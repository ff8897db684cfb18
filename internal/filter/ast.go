// Package filter implements Component F (spec.md §4.B): the JSON-parseable
// filter expression AST and its compilation into a bitmap operator tree.
package filter

import jsoniter "github.com/json-iterator/go"

// Kind is the closed set of filter node kinds of spec.md §4.B, dispatched
// by Compile's switch rather than an interface per node kind (matching how
// the teacher dispatches on its own closed Kind constants).
type Kind string

const (
	KindTrue         Kind = "True"
	KindFalse        Kind = "False"
	KindAnd          Kind = "And"
	KindOr           Kind = "Or"
	KindNot          Kind = "Not"
	KindNOf          Kind = "N-Of"
	KindMaybe        Kind = "Maybe"
	KindExact        Kind = "Exact"
	KindSymbolEquals Kind = "SymbolEquals"
	KindSymbolInSet  Kind = "SymbolInSet"
	KindHasMutation  Kind = "HasMutation"
	KindHasInsertion Kind = "HasInsertion"
	KindDateBetween  Kind = "DateBetween"
	KindStringEquals Kind = "StringEquals"
	KindIntEquals    Kind = "IntEquals"
	KindIntBetween   Kind = "IntBetween"
	KindFloatEquals  Kind = "FloatEquals"
	KindFloatBetween Kind = "FloatBetween"
	KindBoolEquals   Kind = "BoolEquals"
	KindPangoLineage Kind = "PangoLineage"
)

// Node is one filter-expression tree node, per spec.md §4.B's table of
// kinds and payloads. It is a single flat struct carrying every kind's
// fields rather than one Go type per kind: Compile switches on Type and
// reads only the fields that kind defines, the same tagged-sum-type shape
// used throughout this codebase (alphabet.Alphabet, column.Type).
type Node struct {
	Type Kind `json:"type"`

	// And, Or, N-Of.
	Children []*Node `json:"children,omitempty"`
	// Not, Maybe, Exact.
	Child *Node `json:"child,omitempty"`

	// N-Of.
	N            int  `json:"n,omitempty"`
	MatchExactly bool `json:"matchExactly,omitempty"`

	// SymbolEquals, SymbolInSet, HasMutation, HasInsertion: position is
	// 1-based in JSON, converted to 0-based at compile time.
	SequenceName string   `json:"sequenceName,omitempty"`
	Position     int      `json:"position,omitempty"`
	Symbol       string   `json:"symbol,omitempty"`
	Symbols      []string `json:"symbols,omitempty"`

	// HasInsertion.
	Pattern string `json:"pattern,omitempty"`
	Regex   bool   `json:"regex,omitempty"`

	// DateBetween, StringEquals, IntEquals/Between, FloatEquals/Between,
	// BoolEquals, PangoLineage.
	Column string `json:"column,omitempty"`

	// DateBetween: inclusive bounds as "YYYY-MM-DD"; nil = open.
	DateFrom *string `json:"from,omitempty"`
	DateTo   *string `json:"to,omitempty"`

	// StringEquals, PangoLineage.
	StringValue        *string `json:"value,omitempty"`
	IncludeSublineages bool    `json:"includeSublineages,omitempty"`

	// IntEquals, IntBetween.
	IntValue *int32 `json:"intValue,omitempty"`
	IntFrom  *int32 `json:"intFrom,omitempty"`
	IntTo    *int32 `json:"intTo,omitempty"`

	// FloatEquals, FloatBetween.
	FloatValue *float64 `json:"floatValue,omitempty"`
	FloatFrom  *float64 `json:"floatFrom,omitempty"`
	FloatTo    *float64 `json:"floatTo,omitempty"`

	// BoolEquals: nil compares against null.
	BoolValue *bool `json:"boolValue,omitempty"`
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse decodes a filter-expression JSON document into a Node tree using
// json-iterator/go, the JSON codec SPEC_FULL.md's domain stack wires in
// for the filter/action query surface.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := jsonAPI.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
