// Package vectorstore provides passage types and vector similarity retrieval.
package vectorstore

import "context"

// PageUnknown marks a passage whose source page could not be determined.
const PageUnknown = -1

// Passage is an immutable unit of retrieved document text. Page, numeric
// content flag and word count are populated at ingestion time; the query
// pipeline only reads them.
type Passage struct {
	Text       string
	Page       int // PageUnknown when the source page is not recorded
	HasNumbers bool
	WordCount  int
}

// ScoredPassage pairs a passage with a relevance score. A NaN score marks a
// passage with no usable similarity.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// IndexStats describes the state of the underlying vector index.
type IndexStats struct {
	TotalPassages int64  `json:"total_passages"`
	Collection    string `json:"collection"`
	Model         string `json:"model"`
	Status        string `json:"status"`
}

// Retriever defines similarity search over the indexed document.
type Retriever interface {
	// Search returns up to k passages ordered by descending similarity
	// in [0,1].
	Search(ctx context.Context, query string, k int) ([]ScoredPassage, error)

	// Stats reports the current state of the index.
	Stats(ctx context.Context) (IndexStats, error)
}
