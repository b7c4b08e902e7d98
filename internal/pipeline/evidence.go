package pipeline

import (
	"strconv"
	"strings"

	"github.com/finrag/finrag/internal/vectorstore"
)

const (
	previewLength = 150
	snippetLength = 240
	maxEvidence   = 3
)

// pageLabel renders a page number, or the literal unknown marker when the
// passage carries no page metadata.
func pageLabel(page int) string {
	if page == vectorstore.PageUnknown {
		return "?"
	}
	return strconv.Itoa(page)
}

// formatSources projects every final passage into its public view, in the
// reranked order.
func formatSources(passages []vectorstore.ScoredPassage) []Source {
	sources := make([]Source, 0, len(passages))
	for _, sp := range passages {
		sources = append(sources, Source{
			Page:    pageLabel(sp.Passage.Page),
			Score:   round3(sp.Score),
			Preview: truncate(sp.Passage.Text, previewLength) + "...",
		})
	}
	return sources
}

// buildEvidence projects the first maxEvidence passages into compact
// audit-trail snippets, in the same order as the sources.
func buildEvidence(passages []vectorstore.ScoredPassage) []Evidence {
	evidence := make([]Evidence, 0, maxEvidence)
	for _, sp := range passages {
		if len(evidence) == maxEvidence {
			break
		}
		evidence = append(evidence, Evidence{
			Page:    pageLabel(sp.Passage.Page),
			Score:   round3(sp.Score),
			Snippet: strings.TrimSpace(truncate(sp.Passage.Text, snippetLength)),
		})
	}
	return evidence
}

// truncate returns the first n runes of s, never splitting a multibyte
// character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
