// Package query implements Component J (spec.md §5/§6): the query driver
// that parses a query JSON document, compiles and evaluates its filter
// expression against every partition in parallel, runs the requested
// action over the resulting bitmaps, and streams the entries back as
// NDJSON under the backpressure contract of spec.md §5.
package query

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/nishad/silo/internal/action"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/filter"
)

const opParse errors.Op = "query.ParseRequest"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one parsed SILO query: a filter expression to compile per
// partition and an action to run over the rows it selects, per spec.md
// §6's `{filterExpression, action}` wire format.
type Request struct {
	FilterExpression *filter.Node
	Action           action.Action
}

// orderByJSON decodes spec.md §6's `<OrderBy>` union: either a bare field
// name string (ascending), or `{field, order}` with order
// "ascending"|"descending".
type orderByJSON struct {
	Field     string
	Ascending bool
}

func (o *orderByJSON) UnmarshalJSON(data []byte) error {
	var field string
	if err := jsonAPI.Unmarshal(data, &field); err == nil {
		o.Field = field
		o.Ascending = true
		return nil
	}
	var obj struct {
		Field string `json:"field"`
		Order string `json:"order"`
	}
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Field = obj.Field
	o.Ascending = obj.Order != "descending"
	return nil
}

// actionJSON is the JSON mirror of action.Action: spec.md §6 names the
// action's JSON fields in camelCase (groupByFields, orderByFields, …),
// distinct from the Go struct's field names.
type actionJSON struct {
	Type             action.Kind   `json:"type"`
	GroupBy          []string      `json:"groupByFields,omitempty"`
	Fields           []string      `json:"fields,omitempty"`
	SequenceName     string        `json:"sequenceName,omitempty"`
	SequenceNames    []string      `json:"sequenceNames,omitempty"`
	MinProportion    *float64      `json:"minProportion,omitempty"`
	AdditionalFields []string      `json:"additionalFields,omitempty"`
	OrderByFields    []orderByJSON `json:"orderByFields,omitempty"`
	Limit            *int          `json:"limit,omitempty"`
	Offset           *int          `json:"offset,omitempty"`
	RandomizeSeed    *uint64       `json:"randomizeSeed,omitempty"`
}

func (a actionJSON) toAction() action.Action {
	out := action.Action{
		Type:             a.Type,
		GroupBy:          a.GroupBy,
		Fields:           a.Fields,
		SequenceName:     a.SequenceName,
		SequenceNames:    a.SequenceNames,
		AdditionalFields: a.AdditionalFields,
		Limit:            a.Limit,
		Offset:           a.Offset,
		RandomizeSeed:    a.RandomizeSeed,
	}
	if a.MinProportion != nil {
		out.MinProportion = *a.MinProportion
	}
	if len(a.OrderByFields) > 0 {
		out.OrderBy = make([]action.OrderBy, len(a.OrderByFields))
		for i, ob := range a.OrderByFields {
			out.OrderBy[i] = action.OrderBy{Field: ob.Field, Ascending: ob.Ascending}
		}
	}
	return out
}

type requestJSON struct {
	FilterExpression *filter.Node `json:"filterExpression"`
	Action           actionJSON   `json:"action"`
}

// ParseRequest decodes one query document per spec.md §6's wire format.
func ParseRequest(data []byte) (*Request, error) {
	var raw requestJSON
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return nil, errors.BadRequest(opParse, "invalid query JSON: "+err.Error())
	}
	if raw.FilterExpression == nil {
		return nil, errors.BadRequest(opParse, "filterExpression: missing")
	}
	return &Request{FilterExpression: raw.FilterExpression, Action: raw.Action.toAction()}, nil
}
