package result

import (
	"encoding/json"
	"testing"
)

func TestResponse_JSONFieldNames(t *testing.T) {
	resp := Response{
		Results: []Item{{
			ID: "doc-1",
			Document: &Document{
				ID:                "doc-1",
				DerivedStructData: map[string]any{"link": "gs://b/docs/a.pdf"},
			},
		}},
		TotalSize: 1,
		Summary: &Summary{
			SummaryText: "answer",
			SummaryWithMetadata: &SummaryWithMetadata{
				CitationMetadata: &CitationMetadata{
					Citations: []Citation{{EndIndex: 6, Sources: []CitationSource{{ReferenceIndex: 0}}}},
				},
			},
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"results", "totalSize", "summary"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	for _, key := range []string{"attributionToken", "nextPageToken", "correctedQuery", "queryExpansionInfo"} {
		if _, ok := raw[key]; ok {
			t.Errorf("empty key %q should be omitted", key)
		}
	}

	summary := raw["summary"].(map[string]any)
	swm := summary["summaryWithMetadata"].(map[string]any)
	cites := swm["citationMetadata"].(map[string]any)["citations"].([]any)
	src := cites[0].(map[string]any)["sources"].([]any)[0].(map[string]any)
	if _, ok := src["referenceIndex"]; !ok {
		t.Error("referenceIndex 0 must be present")
	}
}

func TestResponse_EmptyMarshalsToObject(t *testing.T) {
	data, err := json.Marshal(Response{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("got %s, want {}", data)
	}
}
