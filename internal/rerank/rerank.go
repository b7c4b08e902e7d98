// Package rerank rescores retrieved passages with signals beyond raw similarity.
package rerank

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/finrag/finrag/internal/vectorstore"
)

// Reranker re-orders scored passages by a second-pass relevance estimate and
// truncates to topK. Ties keep their original relative order.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []vectorstore.ScoredPassage, topK int) ([]vectorstore.ScoredPassage, error)
}

// Signal weights, summing to 1.0. The financial boost tops out at 0.25 before
// weighting, so a final score can slightly exceed 1.0. That headroom is
// deliberate and is not clamped.
const (
	similarityWeight = 0.6
	keywordWeight    = 0.2
	lengthWeight     = 0.1
	financialWeight  = 0.1

	// idealWordCount is where the length signal peaks.
	idealWordCount = 200

	termBoost    = 0.15
	numericBoost = 0.10
)

// financialTerms trigger the domain boost when present in the passage text.
var financialTerms = []string{
	"revenue", "net sales", "sales",
	"eur", "€", "million", "billion",
}

// Heuristic blends retrieval similarity with keyword overlap, length fit and
// a financial-domain boost. It is deterministic and never fails.
type Heuristic struct{}

// NewHeuristic creates a heuristic reranker.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Rerank rescores every passage and returns the top topK by final score.
func (h *Heuristic) Rerank(ctx context.Context, query string, passages []vectorstore.ScoredPassage, topK int) ([]vectorstore.ScoredPassage, error) {
	queryWords := wordSet(strings.ToLower(query))

	rescored := make([]vectorstore.ScoredPassage, len(passages))
	for i, sp := range passages {
		text := strings.ToLower(sp.Passage.Text)

		// Keyword overlap: fraction of query words present in the passage.
		keywordScore := 0.0
		if len(queryWords) > 0 {
			passageWords := wordSet(text)
			matched := 0
			for w := range queryWords {
				if _, ok := passageWords[w]; ok {
					matched++
				}
			}
			keywordScore = float64(matched) / float64(len(queryWords))
		}

		// Length fit: smooth peak at idealWordCount, decaying symmetrically.
		lengthScore := 1.0 / (1.0 + math.Abs(float64(sp.Passage.WordCount)-idealWordCount)/idealWordCount)

		boost := 0.0
		for _, term := range financialTerms {
			if strings.Contains(text, term) {
				boost += termBoost
				break
			}
		}
		if sp.Passage.HasNumbers {
			boost += numericBoost
		}

		rescored[i] = vectorstore.ScoredPassage{
			Passage: sp.Passage,
			Score: similarityWeight*sp.Score +
				keywordWeight*keywordScore +
				lengthWeight*lengthScore +
				financialWeight*boost,
		}
	}

	// Stable sort keeps the original relative order for equal scores.
	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].Score > rescored[j].Score
	})

	if topK > 0 && len(rescored) > topK {
		rescored = rescored[:topK]
	}
	return rescored, nil
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Ensure Heuristic implements Reranker interface.
var _ Reranker = (*Heuristic)(nil)
