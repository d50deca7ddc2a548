package context_test

import (
	"testing"

	cectx "github.com/easyops/contextengine/pkg/context"
)

func TestFingerprint(t *testing.T) {
	sources := []cectx.Source{{ID: "g1", Type: cectx.ItemTypeGoal, Name: "g1", Confidence: 1, Relevance: 0.8}}

	a, err := cectx.Fingerprint("<context></context>", sources)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}

	b, _ := cectx.Fingerprint("<context></context>", []cectx.Source{sources[0]})
	if a != b {
		t.Error("identical input must produce identical fingerprints")
	}

	changed := []cectx.Source{sources[0]}
	changed[0].Relevance = 0.7
	c, _ := cectx.Fingerprint("<context></context>", changed)
	if a == c {
		t.Error("different sources must produce different fingerprints")
	}

	nilSources, _ := cectx.Fingerprint("x", nil)
	emptySources, _ := cectx.Fingerprint("x", []cectx.Source{})
	if nilSources != emptySources {
		t.Error("nil and empty sources must fingerprint the same")
	}
}
