package context_test

import (
	"strings"
	"testing"

	cectx "github.com/easyops/contextengine/pkg/context"
)

func TestSerializer_Empty(t *testing.T) {
	counter := cectx.NewEstimatedCounter()
	doc, tokens := cectx.NewSerializer(counter).Serialize(nil)

	want := "<context>\n  <identity></identity>\n  <project></project>\n  <other></other>\n</context>\n"
	if doc != want {
		t.Errorf("doc = %q, want %q", doc, want)
	}
	if tokens != counter.Count(want) {
		t.Errorf("tokens = %d, want %d", tokens, counter.Count(want))
	}
}

func TestSerializer_GroupsByCategory(t *testing.T) {
	selected := []cectx.SelectedItem{
		{Item: cectx.NewCandidateItem("n1", cectx.ItemTypeContextNote, "note"), Category: cectx.CategoryOther},
		{Item: cectx.NewCandidateItem("g1", cectx.ItemTypeGoal, "ship v2", cectx.WithName("Ship")), Category: cectx.CategoryIdentity},
	}

	doc, _ := cectx.NewSerializer(cectx.NewEstimatedCounter()).Serialize(selected)

	identity := strings.Index(doc, `<item type="goal" id="g1" name="Ship">ship v2</item>`)
	other := strings.Index(doc, `<item type="context-note" id="n1" name="n1">note</item>`)
	if identity < 0 || other < 0 {
		t.Fatalf("missing items in document:\n%s", doc)
	}
	if identity > other {
		t.Error("identity items must precede other items")
	}
	if !strings.Contains(doc, "<project></project>") {
		t.Error("empty project element must still be present")
	}
}

func TestParseContext_RoundTrip(t *testing.T) {
	selected := []cectx.SelectedItem{
		{
			Item:     cectx.NewCandidateItem("g&1", cectx.ItemTypeGoal, `if a < b && c > "d" then 'e'`, cectx.WithName(`The "Goal"`)),
			Category: cectx.CategoryIdentity,
		},
		{
			Item:      cectx.NewCandidateItem("d1", cectx.ItemTypeDocument, "line one\nline two\t中文"),
			Category:  cectx.CategoryProject,
			Truncated: true,
		},
	}

	doc, _ := cectx.NewSerializer(cectx.NewEstimatedCounter()).Serialize(selected)

	parsed, err := cectx.ParseContext(doc)
	if err != nil {
		t.Fatalf("ParseContext: %v", err)
	}
	if len(parsed) != len(selected) {
		t.Fatalf("parsed %d items, want %d", len(parsed), len(selected))
	}

	for i, p := range parsed {
		want := selected[i]
		if p.ID != want.Item.ID || p.Name != want.Item.Name || p.Content != want.Item.Content {
			t.Errorf("item %d = %+v, want %+v", i, p, want.Item)
		}
		if p.Type != want.Item.Type || p.Category != want.Category || p.Truncated != want.Truncated {
			t.Errorf("item %d metadata = %+v", i, p)
		}
	}
}

func TestParseContext_Invalid(t *testing.T) {
	if _, err := cectx.ParseContext("<context><identity>"); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestParseContext_EscapedContentRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		lossless bool
	}{
		{"markup", `<a href="x">&amp; 'q'</a>`, true},
		{"json", `{"k":"v","list":[1,2]}`, true},
		{"whitespace", "cr\r\nlf\n\ttab", true},
		{"unicode", "日本語 ✓ �", true},
		{"invalid utf8", "bad \xff\xfe utf8", false},
		{"control chars", "nul \x00 bell \x07", false},
	}

	counter := cectx.NewEstimatedCounter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []cectx.CandidateItem{cectx.NewCandidateItem("g1", cectx.ItemTypeGoal, tt.content)}
			selected := cectx.NewSelector(counter).Select(scored(items, 0.5), items, cectx.Allocate(1000), "")
			if len(selected) != 1 {
				t.Fatalf("selected %d items, want 1", len(selected))
			}

			doc, _ := cectx.NewSerializer(counter).Serialize(selected)
			parsed, err := cectx.ParseContext(doc)
			if err != nil {
				t.Fatalf("ParseContext: %v", err)
			}
			if len(parsed) != 1 {
				t.Fatalf("parsed %d items, want 1", len(parsed))
			}

			if parsed[0].Content != selected[0].Item.Content {
				t.Errorf("parsed %q, selected %q", parsed[0].Content, selected[0].Item.Content)
			}
			if lossless := parsed[0].Content == tt.content; lossless != tt.lossless {
				t.Errorf("content preserved = %v, want %v (got %q)", lossless, tt.lossless, parsed[0].Content)
			}
		})
	}
}

func TestSerializer_EnvelopeCost(t *testing.T) {
	counter := cectx.NewEstimatedCounter()
	s := cectx.NewSerializer(counter)

	envelope := "<context>\n" +
		"  <identity>\n  </identity>\n" +
		"  <project>\n  </project>\n" +
		"  <other>\n  </other>\n" +
		"</context>\n"
	if got, want := s.EnvelopeCost(), counter.Count(envelope); got != want {
		t.Errorf("EnvelopeCost = %d, want %d", got, want)
	}
}
