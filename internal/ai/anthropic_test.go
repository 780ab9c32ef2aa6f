package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

func TestUnconfiguredClient(t *testing.T) {
	a := NewAnthropic("", "", 0)
	ctx := context.Background()

	if _, err := a.Summarize(ctx, models.Note{Text: "x"}); !errors.Is(err, apperr.ErrAINotConfigured) {
		t.Errorf("summarize: %v", err)
	}
	if _, err := a.Query(ctx, "hi", nil, nil); !errors.Is(err, apperr.ErrAINotConfigured) {
		t.Errorf("query: %v", err)
	}
}

func TestTextContentSkipsNonTextBlocks(t *testing.T) {
	blocks := []anthropic.ContentBlockUnion{
		{Type: "text", Text: "hello "},
		{Type: "tool_use"},
		{Type: "text", Text: "world"},
	}
	if got := textContent(blocks); got != "hello world" {
		t.Errorf("textContent = %q", got)
	}
	if got := textContent(nil); got != "" {
		t.Errorf("empty reply = %q", got)
	}
}

func TestParseStringList(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{`["a","b"]`, []string{"a", "b"}},
		{"```json\n[\"a\"]\n```", []string{"a"}},
		{`[]`, []string{}},
		{`not json at all`, []string{}},
		{`null`, []string{}},
	}
	for _, c := range cases {
		if got := parseStringList(c.raw); !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseStringList(%q) = %#v, want %#v", c.raw, got, c.want)
		}
	}
}

func TestParseRelatedFiltersAndCaps(t *testing.T) {
	all := []models.Note{
		{ID: "n1"}, {ID: "n2"}, {ID: "n3"}, {ID: "n4"}, {ID: "self"},
	}

	got := parseRelated(`["n2","ghost","self","n4","n1","n3"]`, "self", all)
	want := []string{"n2", "n4", "n1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := parseRelated("garbage", "self", all); len(got) != 0 {
		t.Errorf("garbage reply: %v", got)
	}
}

func TestParseQueryResultAnswer(t *testing.T) {
	res := parseQueryResult(`{"kind":"answer","content":"three notes mention the launch"}`)
	if res.Kind != KindAnswer || res.Content != "three notes mention the launch" {
		t.Errorf("res = %+v", res)
	}
	if res.Note != nil {
		t.Error("answer must carry no draft")
	}
}

func TestParseQueryResultCreate(t *testing.T) {
	res := parseQueryResult("```json\n" + `{"kind":"create_note","content":"Added it.","note":{"text":"buy milk","tags":["errand"],"color":"lime"}}` + "\n```")
	if res.Kind != KindCreateNote {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.Note == nil || res.Note.Text != "buy milk" || res.Note.Color != models.ColorLime {
		t.Errorf("draft = %+v", res.Note)
	}
}

func TestParseQueryResultDegradesToAnswer(t *testing.T) {
	// Non-JSON replies and mutation replies missing a draft both fall back
	// to a plain answer so the user always sees something.
	for _, raw := range []string{
		"Sure! Here are your notes about cats.",
		`{"kind":"create_note","content":"oops"}`,
		`{"kind":"teleport","content":"?"}`,
	} {
		res := parseQueryResult(raw)
		if res.Kind != KindAnswer {
			t.Errorf("parseQueryResult(%q).Kind = %q, want answer", raw, res.Kind)
		}
		if res.Content == "" {
			t.Errorf("parseQueryResult(%q) lost the content", raw)
		}
	}
}

func TestCollectionContext(t *testing.T) {
	all := []models.Note{
		{ID: "n1", Text: "alpha", Tags: []string{"t"}},
		{ID: "n2", Text: strings.Repeat("x", 500)},
	}
	ctxt := collectionContext(all, "n1")
	if strings.Contains(ctxt, "[n1]") {
		t.Error("excluded note present")
	}
	if !strings.Contains(ctxt, "[n2]") {
		t.Error("note missing")
	}
	if len(ctxt) > 300 {
		t.Errorf("long text not truncated: %d bytes", len(ctxt))
	}

	if got := collectionContext(nil, ""); !strings.Contains(got, "no notes") {
		t.Errorf("empty collection: %q", got)
	}
}
