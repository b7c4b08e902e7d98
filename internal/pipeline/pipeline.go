// Package pipeline implements the query orchestration core: retrieval,
// reranking, confidence scoring, response caching and metrics aggregation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finrag/finrag/internal/cache"
	"github.com/finrag/finrag/internal/generator"
	"github.com/finrag/finrag/internal/metrics"
	"github.com/finrag/finrag/internal/rerank"
	"github.com/finrag/finrag/internal/vectorstore"
)

// Canned answers for input conditions handled locally instead of failing.
const (
	emptyQuestionAnswer = "Empty question."
	noResultsAnswer     = "No relevant information found in the document."
)

// Source is the public projection of a final passage: page, score and a
// short preview of the text.
type Source struct {
	Page    string  `json:"page"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// Evidence is the compact excerpt shown to justify an answer.
type Evidence struct {
	Page    string  `json:"page"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Confidence is a derived trust signal for the generated answer, not a
// probability.
type Confidence struct {
	Level   string   `json:"level"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// QueryResult is the orchestrator's output. Sources and evidence are derived
// from the same final passage set and share its order.
type QueryResult struct {
	Answer     string     `json:"answer"`
	Sources    []Source   `json:"sources"`
	Evidence   []Evidence `json:"evidence"`
	Confidence Confidence `json:"confidence"`
	LatencyMs  int64      `json:"latency_ms"`
	FromCache  bool       `json:"from_cache"`
	Timestamp  string     `json:"timestamp"`
}

// Clone returns a deep copy, so a cached result can be restamped with fresh
// latency and timestamp without aliasing the stored snapshot. Empty slices
// stay empty rather than becoming nil; sources, evidence and reasons always
// serialize as JSON lists.
func (r QueryResult) Clone() QueryResult {
	out := r
	out.Sources = copySlice(r.Sources)
	out.Evidence = copySlice(r.Evidence)
	out.Confidence.Reasons = copySlice(r.Confidence.Reasons)
	return out
}

func copySlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// QueryRequest holds the caller's question and per-call switches.
type QueryRequest struct {
	Question  string
	TopK      int // 0 means the configured retrieval default
	UseCache  bool
	UseRerank bool
}

// Options configures the pipeline. Zero values fall back to the defaults of
// the original deployment.
type Options struct {
	TopKRetrieval int
	TopKFinal     int
	EnableCache   bool
	CacheTTL      time.Duration
	CacheMaxSize  int
}

func (o Options) withDefaults() Options {
	if o.TopKRetrieval <= 0 {
		o.TopKRetrieval = 10
	}
	if o.TopKFinal <= 0 {
		o.TopKFinal = 5
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Hour
	}
	if o.CacheMaxSize <= 0 {
		o.CacheMaxSize = 500
	}
	return o
}

// Pipeline sequences retrieval, reranking, generation, confidence scoring,
// caching and metrics. A single instance may be shared across concurrent
// request handlers; the cache and metrics guard their own state.
type Pipeline struct {
	retriever vectorstore.Retriever
	reranker  rerank.Reranker
	generator generator.Generator
	cache     *cache.Store[QueryResult]
	metrics   *metrics.Aggregator
	opts      Options
	logger    *slog.Logger
}

// New creates a pipeline over the given collaborators.
func New(retriever vectorstore.Retriever, reranker rerank.Reranker, gen generator.Generator, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	return &Pipeline{
		retriever: retriever,
		reranker:  reranker,
		generator: gen,
		cache:     cache.New(opts.CacheTTL, opts.CacheMaxSize, QueryResult.Clone),
		metrics:   metrics.New(),
		opts:      opts,
		logger:    logger,
	}
}

// Query answers a question over the indexed document.
//
// Blank questions and empty retrievals return canned results, never errors.
// Generation cannot fail (the generator absorbs its own errors). Retrieval
// and rerank errors propagate to the caller untouched; in that case no
// metrics or cache state is updated.
func (p *Pipeline) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		// Counted in total/E2E metrics but not in the uncached average:
		// no retrieval work happened.
		return p.finalize(question, emptyQuestionAnswer, nil, start, finalizeOpts{}), nil
	}

	if req.UseCache && p.opts.EnableCache {
		if cached, ok := p.cache.Get(question); ok {
			latency := time.Since(start).Milliseconds()
			p.metrics.RecordQuery(latency, true, false)

			cached.FromCache = true
			cached.LatencyMs = latency
			cached.Timestamp = time.Now().Format(time.RFC3339)

			p.logger.Info("query answered",
				"latency_ms", latency,
				"from_cache", true,
				"confidence", cached.Confidence.Level,
			)
			return cached, nil
		}
	}

	k := req.TopK
	if k <= 0 {
		k = p.opts.TopKRetrieval
	}

	retrieved, err := p.retriever.Search(ctx, question, k)
	if err != nil {
		return QueryResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	allowWrite := req.UseCache && p.opts.EnableCache

	if len(retrieved) == 0 {
		// A "not found" result is deterministic for this question right
		// now, so it is cacheable like any other.
		return p.finalize(question, noResultsAnswer, nil, start, finalizeOpts{
			uncached:        true,
			allowCacheWrite: allowWrite,
		}), nil
	}

	final := retrieved
	if req.UseRerank {
		final, err = p.reranker.Rerank(ctx, question, retrieved, p.opts.TopKFinal)
		if err != nil {
			return QueryResult{}, fmt.Errorf("rerank failed: %w", err)
		}
	} else if len(final) > p.opts.TopKFinal {
		final = final[:p.opts.TopKFinal]
	}

	contextText := buildContext(final)
	answer := p.generator.Generate(ctx, contextText, question)

	return p.finalize(question, answer, final, start, finalizeOpts{
		uncached:        true,
		allowCacheWrite: allowWrite,
	}), nil
}

type finalizeOpts struct {
	uncached        bool
	allowCacheWrite bool
}

// finalize computes latency, confidence, evidence and sources, updates the
// metrics, and conditionally writes through to the cache. Latency is measured
// here and only here; inner components do not record their own timestamps.
func (p *Pipeline) finalize(question, answer string, passages []vectorstore.ScoredPassage, start time.Time, fo finalizeOpts) QueryResult {
	latency := time.Since(start).Milliseconds()
	p.metrics.RecordQuery(latency, false, fo.uncached)

	confidence := scoreConfidence(passages, answer)

	result := QueryResult{
		Answer:     answer,
		Sources:    formatSources(passages),
		Evidence:   buildEvidence(passages),
		Confidence: confidence,
		LatencyMs:  latency,
		FromCache:  false,
		Timestamp:  time.Now().Format(time.RFC3339),
	}

	if fo.allowCacheWrite {
		p.cache.Set(question, result)
	}

	p.logger.Info("query answered",
		"latency_ms", latency,
		"from_cache", false,
		"confidence", confidence.Level,
	)
	return result
}

// MetricsReport is the public metrics view: process counters, cache size and
// pass-through index statistics from the retriever.
type MetricsReport struct {
	metrics.Snapshot
	CacheSize  int                    `json:"cache_size"`
	IndexStats vectorstore.IndexStats `json:"index_stats"`
}

// Metrics returns the current counters and index statistics. A failing stats
// call degrades to an "unavailable" status instead of failing the report.
func (p *Pipeline) Metrics(ctx context.Context) MetricsReport {
	report := MetricsReport{
		Snapshot:  p.metrics.Snapshot(),
		CacheSize: p.cache.Len(),
	}

	stats, err := p.retriever.Stats(ctx)
	if err != nil {
		p.logger.Warn("failed to read index stats", "error", err)
		report.IndexStats = vectorstore.IndexStats{Status: "unavailable"}
		return report
	}
	report.IndexStats = stats
	return report
}
