package store

import (
	"testing"
	"time"

	cectx "github.com/easyops/contextengine/pkg/context"
)

func TestNeo4jPropsRoundTrip(t *testing.T) {
	ts := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	in := cectx.NewCandidateItem("e1", cectx.ItemTypeEntity, "billing service",
		cectx.WithName("Billing"), cectx.WithConfidence(0.6), cectx.WithSemantic(0.3),
		cectx.WithTimestamp(ts), cectx.WithProject("p1"))

	params := itemToParams(in)
	if params["project_id"] != "p1" || params["type"] != "entity" {
		t.Errorf("params = %+v", params)
	}

	out := propsToItem(params, "p1")
	if out.ID != "e1" || out.Name != "Billing" || out.Content != in.Content || out.ProjectID != "p1" {
		t.Errorf("item = %+v", out)
	}
	if out.Signals.Confidence != 0.6 {
		t.Errorf("confidence = %f", out.Signals.Confidence)
	}
	if out.Signals.Semantic == nil || *out.Signals.Semantic != 0.3 {
		t.Errorf("semantic = %v", out.Signals.Semantic)
	}
	if !out.Signals.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v", out.Signals.Timestamp)
	}
}

func TestNeo4jPropsDefaults(t *testing.T) {
	out := propsToItem(map[string]any{"id": "x", "type": "goal", "confidence": int64(1)}, "")

	if out.Name != "x" {
		t.Errorf("name should default to id, got %q", out.Name)
	}
	if out.Signals.Confidence != 1 {
		t.Errorf("confidence = %f", out.Signals.Confidence)
	}
	if out.Signals.Semantic != nil {
		t.Error("missing semantic must stay nil")
	}
	if !out.Signals.Timestamp.IsZero() {
		t.Error("missing updated_at must leave timestamp zero")
	}

	noConf := propsToItem(map[string]any{"id": "y"}, "")
	if noConf.Signals.Confidence != 1 {
		t.Errorf("missing confidence should default to 1, got %f", noConf.Signals.Confidence)
	}
}
