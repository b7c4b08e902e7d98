package metrics

import "testing"

func TestSnapshot_ZeroState(t *testing.T) {
	a := New()
	s := a.Snapshot()

	if s.TotalQueries != 0 || s.CacheHits != 0 {
		t.Errorf("expected zero counters, got %+v", s)
	}
	if s.CacheHitRate != 0 {
		t.Errorf("expected hit rate 0 with no queries, got %f", s.CacheHitRate)
	}
	if s.AvgLatencyE2EMs != nil {
		t.Error("expected nil E2E average with no queries")
	}
	if s.AvgLatencyUncachedMs != nil {
		t.Error("expected nil uncached average with no uncached queries")
	}
}

func TestSnapshot_Consistency(t *testing.T) {
	a := New()

	// Two uncached queries, one cache hit.
	a.RecordQuery(100, false, true)
	a.RecordQuery(300, false, true)
	a.RecordQuery(2, true, false)

	s := a.Snapshot()

	if s.TotalQueries != 3 {
		t.Errorf("expected 3 total queries, got %d", s.TotalQueries)
	}
	if s.CacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", s.CacheHits)
	}
	if s.CacheHitRate != 0.333 {
		t.Errorf("expected hit rate 0.333, got %f", s.CacheHitRate)
	}
	if s.AvgLatencyE2EMs == nil || *s.AvgLatencyE2EMs != 134 {
		t.Errorf("expected E2E average 134, got %v", s.AvgLatencyE2EMs)
	}
	if s.AvgLatencyUncachedMs == nil || *s.AvgLatencyUncachedMs != 200 {
		t.Errorf("expected uncached average 200, got %v", s.AvgLatencyUncachedMs)
	}
}

func TestRecordQuery_EmptyQuestionAccounting(t *testing.T) {
	a := New()

	// An empty-question call: counted in totals, excluded from uncached.
	a.RecordQuery(1, false, false)

	s := a.Snapshot()
	if s.TotalQueries != 1 {
		t.Errorf("expected 1 total query, got %d", s.TotalQueries)
	}
	if s.AvgLatencyE2EMs == nil {
		t.Error("expected E2E average to be set")
	}
	if s.AvgLatencyUncachedMs != nil {
		t.Error("expected uncached average to stay nil")
	}
}
