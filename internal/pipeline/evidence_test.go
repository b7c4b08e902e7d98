package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finrag/finrag/internal/vectorstore"
)

func TestFormatSources(t *testing.T) {
	long := strings.Repeat("a", 300)
	passages := []vectorstore.ScoredPassage{
		{Passage: vectorstore.Passage{Text: long, Page: 12}, Score: 0.87654},
		{Passage: vectorstore.Passage{Text: "short", Page: vectorstore.PageUnknown}, Score: 0.5},
	}

	sources := formatSources(passages)

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Page != "12" {
		t.Errorf("expected page 12, got %s", sources[0].Page)
	}
	if sources[0].Score != 0.877 {
		t.Errorf("expected score rounded to 0.877, got %f", sources[0].Score)
	}
	if len(sources[0].Preview) != 153 {
		t.Errorf("expected 150-char preview plus ellipsis, got %d chars", len(sources[0].Preview))
	}
	if !strings.HasSuffix(sources[0].Preview, "...") {
		t.Error("expected preview to end with ellipsis")
	}
	if sources[1].Page != "?" {
		t.Errorf("expected unknown page marker, got %s", sources[1].Page)
	}
}

func TestBuildEvidence(t *testing.T) {
	long := "  " + strings.Repeat("b", 300)
	passages := []vectorstore.ScoredPassage{
		{Passage: vectorstore.Passage{Text: long, Page: 1}, Score: 0.9},
		{Passage: vectorstore.Passage{Text: "two", Page: 2}, Score: 0.8},
		{Passage: vectorstore.Passage{Text: "three", Page: 3}, Score: 0.7},
		{Passage: vectorstore.Passage{Text: "four", Page: 4}, Score: 0.6},
	}

	evidence := buildEvidence(passages)

	if len(evidence) != 3 {
		t.Fatalf("expected at most 3 evidence items, got %d", len(evidence))
	}
	if strings.HasPrefix(evidence[0].Snippet, " ") {
		t.Error("expected snippet to be trimmed")
	}
	if len(evidence[0].Snippet) > 240 {
		t.Errorf("expected snippet capped at 240 chars, got %d", len(evidence[0].Snippet))
	}
	if evidence[2].Page != "3" {
		t.Errorf("expected third evidence from page 3, got %s", evidence[2].Page)
	}
}

func TestFormatSources_MultibyteBoundary(t *testing.T) {
	// The 150th character is the euro sign; truncation must not cut into
	// its byte sequence.
	text := strings.Repeat("a", 149) + "€ 86,153 million euros in revenue"
	sources := formatSources([]vectorstore.ScoredPassage{
		{Passage: vectorstore.Passage{Text: text, Page: 3}, Score: 0.9},
	})

	preview := sources[0].Preview
	if !utf8.ValidString(preview) {
		t.Errorf("preview is not valid UTF-8: %q", preview)
	}
	if got := utf8.RuneCountInString(preview); got != 153 {
		t.Errorf("expected 150 characters plus ellipsis, got %d", got)
	}
	if !strings.HasSuffix(preview, "€...") {
		t.Errorf("expected the euro sign to survive truncation, got suffix %q", preview[len(preview)-8:])
	}

	evidence := buildEvidence([]vectorstore.ScoredPassage{
		{Passage: vectorstore.Passage{Text: strings.Repeat("б", 300), Page: 4}, Score: 0.8},
	})
	snippet := evidence[0].Snippet
	if !utf8.ValidString(snippet) {
		t.Errorf("snippet is not valid UTF-8: %q", snippet)
	}
	if got := utf8.RuneCountInString(snippet); got != 240 {
		t.Errorf("expected snippet capped at 240 characters, got %d", got)
	}
}

func TestFormatSources_Empty(t *testing.T) {
	if got := formatSources(nil); len(got) != 0 {
		t.Errorf("expected empty sources, got %v", got)
	}
	if got := buildEvidence(nil); len(got) != 0 {
		t.Errorf("expected empty evidence, got %v", got)
	}
}
