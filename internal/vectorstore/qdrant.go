package vectorstore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/finrag/finrag/internal/embedder"
)

// Payload keys written by the ingestion side.
const (
	payloadText       = "text"
	payloadPage       = "page"
	payloadHasNumbers = "has_numbers"
	payloadWordCount  = "word_count"
)

// QdrantRetriever implements Retriever against a Qdrant collection. The query
// text is embedded with the configured embedder before searching.
type QdrantRetriever struct {
	client     *qdrant.Client
	embedder   embedder.Embedder
	collection string
	minScore   float32
}

// NewQdrantRetriever creates a retriever backed by Qdrant.
// url should be in format "host:port" (e.g., "localhost:6334")
func NewQdrantRetriever(ctx context.Context, url, collection string, emb embedder.Embedder, minScore float32) (*QdrantRetriever, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant url: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantRetriever{
		client:     client,
		embedder:   emb,
		collection: collection,
		minScore:   minScore,
	}, nil
}

// Close closes the Qdrant client connection
func (r *QdrantRetriever) Close() error {
	return r.client.Close()
}

// Search embeds the query and performs similarity search over the collection.
func (r *QdrantRetriever) Search(ctx context.Context, query string, k int) ([]ScoredPassage, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	req := &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if r.minScore > 0 {
		req.ScoreThreshold = qdrant.PtrOf(r.minScore)
	}

	response, err := r.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]ScoredPassage, 0, len(response))
	for _, point := range response {
		passage := Passage{Page: PageUnknown}

		if payload := point.Payload; payload != nil {
			if text, ok := payload[payloadText]; ok {
				passage.Text = text.GetStringValue()
			}
			if page, ok := payload[payloadPage]; ok {
				passage.Page = int(page.GetIntegerValue())
			}
			if hasNumbers, ok := payload[payloadHasNumbers]; ok {
				passage.HasNumbers = hasNumbers.GetBoolValue()
			}
			if wordCount, ok := payload[payloadWordCount]; ok {
				passage.WordCount = int(wordCount.GetIntegerValue())
			}
		}

		results = append(results, ScoredPassage{
			Passage: passage,
			Score:   float64(point.Score),
		})
	}

	return results, nil
}

// Stats reports the size of the collection and the embedding model in use.
func (r *QdrantRetriever) Stats(ctx context.Context) (IndexStats, error) {
	count, err := r.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: r.collection,
	})
	if err != nil {
		return IndexStats{}, fmt.Errorf("failed to count points: %w", err)
	}

	return IndexStats{
		TotalPassages: int64(count),
		Collection:    r.collection,
		Model:         r.embedder.ModelName(),
		Status:        "loaded",
	}, nil
}

// Ensure QdrantRetriever implements Retriever
var _ Retriever = (*QdrantRetriever)(nil)
