// Package metrics tracks query counters for the lifetime of the process.
package metrics

import (
	"math"
	"sync"
)

// Aggregator accumulates query counts and latency sums. Rates and averages
// are computed on read, never stored. Counters reset only on process restart.
//
// Safe for concurrent use.
type Aggregator struct {
	mu                     sync.Mutex
	totalQueries           int64
	cacheHits              int64
	uncachedQueries        int64
	totalLatencyE2EMs      int64
	totalLatencyUncachedMs int64
}

// New creates an aggregator with all counters at zero.
func New() *Aggregator {
	return &Aggregator{}
}

// RecordQuery records one completed query call. fromCache marks a cache hit.
// uncached controls whether the latency feeds the uncached average: cache
// hits and the empty-question short circuit are excluded, every call that did
// real retrieval work is included.
func (a *Aggregator) RecordQuery(latencyMs int64, fromCache, uncached bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries++
	a.totalLatencyE2EMs += latencyMs
	if fromCache {
		a.cacheHits++
	}
	if uncached {
		a.uncachedQueries++
		a.totalLatencyUncachedMs += latencyMs
	}
}

// Snapshot is a point-in-time view of the aggregated metrics. Averages are
// nil until at least one query of the corresponding kind has completed.
type Snapshot struct {
	TotalQueries         int64    `json:"total_queries"`
	CacheHits            int64    `json:"cache_hits"`
	CacheHitRate         float64  `json:"cache_hit_rate"`
	AvgLatencyE2EMs      *float64 `json:"avg_latency_e2e_ms"`
	AvgLatencyUncachedMs *float64 `json:"avg_latency_uncached_ms"`
}

// Snapshot computes the current rates and averages.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		TotalQueries: a.totalQueries,
		CacheHits:    a.cacheHits,
	}
	if a.totalQueries > 0 {
		s.CacheHitRate = round3(float64(a.cacheHits) / float64(a.totalQueries))
		avg := round2(float64(a.totalLatencyE2EMs) / float64(a.totalQueries))
		s.AvgLatencyE2EMs = &avg
	}
	if a.uncachedQueries > 0 {
		avg := round2(float64(a.totalLatencyUncachedMs) / float64(a.uncachedQueries))
		s.AvgLatencyUncachedMs = &avg
	}
	return s
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
