package pipeline

import (
	"fmt"
	"strings"

	"github.com/finrag/finrag/internal/vectorstore"
)

// contextDelimiter separates passage blocks in the prompt context.
const contextDelimiter = "\n\n---\n\n"

// buildContext concatenates the final passages into labeled blocks for the
// generation prompt, preserving their order.
func buildContext(passages []vectorstore.ScoredPassage) string {
	parts := make([]string, len(passages))
	for i, sp := range passages {
		parts[i] = fmt.Sprintf("[Page %s | score %.2f]\n%s",
			pageLabel(sp.Passage.Page), sp.Score, sp.Passage.Text)
	}
	return strings.Join(parts, contextDelimiter)
}
