package query

import "testing"

func TestParseRequestOrderByUnion(t *testing.T) {
	data := []byte(`{
		"filterExpression": {"type": "True"},
		"action": {
			"type": "Aggregated",
			"groupByFields": ["country"],
			"orderByFields": ["country", {"field": "count", "order": "descending"}]
		}
	}`)

	req, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(req.Action.OrderBy) != 2 {
		t.Fatalf("OrderBy length = %d, want 2", len(req.Action.OrderBy))
	}
	if req.Action.OrderBy[0].Field != "country" || !req.Action.OrderBy[0].Ascending {
		t.Errorf("OrderBy[0] = %+v, want {country true}", req.Action.OrderBy[0])
	}
	if req.Action.OrderBy[1].Field != "count" || req.Action.OrderBy[1].Ascending {
		t.Errorf("OrderBy[1] = %+v, want {count false}", req.Action.OrderBy[1])
	}
}

func TestParseRequestMissingFilter(t *testing.T) {
	_, err := ParseRequest([]byte(`{"action": {"type": "Aggregated"}}`))
	if err == nil {
		t.Fatal("expected error for missing filterExpression")
	}
}

func TestParseRequestInvalidJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseRequestMinProportionAndLimit(t *testing.T) {
	data := []byte(`{
		"filterExpression": {"type": "True"},
		"action": {
			"type": "NucMutations",
			"minProportion": 0.5,
			"limit": 10,
			"offset": 2,
			"randomizeSeed": 42
		}
	}`)
	req, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Action.MinProportion != 0.5 {
		t.Errorf("MinProportion = %v, want 0.5", req.Action.MinProportion)
	}
	if req.Action.Limit == nil || *req.Action.Limit != 10 {
		t.Errorf("Limit = %v, want 10", req.Action.Limit)
	}
	if req.Action.Offset == nil || *req.Action.Offset != 2 {
		t.Errorf("Offset = %v, want 2", req.Action.Offset)
	}
	if req.Action.RandomizeSeed == nil || *req.Action.RandomizeSeed != 42 {
		t.Errorf("RandomizeSeed = %v, want 42", req.Action.RandomizeSeed)
	}
}
