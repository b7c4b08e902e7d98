package rerank

import (
	"context"
	"math"
	"testing"

	"github.com/finrag/finrag/internal/vectorstore"
)

func scored(text string, page int, hasNumbers bool, wordCount int, score float64) vectorstore.ScoredPassage {
	return vectorstore.ScoredPassage{
		Passage: vectorstore.Passage{
			Text:       text,
			Page:       page,
			HasNumbers: hasNumbers,
			WordCount:  wordCount,
		},
		Score: score,
	}
}

func TestRerank_OrderingAndTruncation(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("plain text about nothing", 1, false, 200, 0.10),
		scored("plain text about nothing", 2, false, 200, 0.90),
		scored("plain text about nothing", 3, false, 200, 0.50),
		scored("plain text about nothing", 4, false, 200, 0.70),
	}

	out, err := r.Rerank(context.Background(), "unrelated query", passages, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("results not sorted at index %d: %f > %f", i, out[i].Score, out[i-1].Score)
		}
	}
	if out[0].Passage.Page != 2 {
		t.Errorf("expected highest-similarity passage first, got page %d", out[0].Passage.Page)
	}
}

func TestRerank_ScoreFormula(t *testing.T) {
	r := NewHeuristic()

	// Full keyword overlap, ideal length, no financial signal.
	passages := []vectorstore.ScoredPassage{
		scored("alpha beta", 1, false, 200, 0.5),
	}

	out, err := r.Rerank(context.Background(), "alpha beta", passages, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 0.6*0.5 + 0.2*1.0 + 0.1*1.0
	if math.Abs(out[0].Score-want) > 1e-9 {
		t.Errorf("expected score %f, got %f", want, out[0].Score)
	}
}

func TestRerank_KeywordOverlapWins(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("nothing relevant here", 1, false, 200, 0.5),
		scored("the dividend policy statement", 2, false, 200, 0.5),
	}

	out, err := r.Rerank(context.Background(), "dividend policy", passages, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].Passage.Page != 2 {
		t.Errorf("expected overlapping passage first, got page %d", out[0].Passage.Page)
	}
}

func TestRerank_FinancialBoost(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("the weather was pleasant", 1, false, 200, 0.5),
		scored("revenue reached a new high", 2, true, 200, 0.5),
	}

	out, err := r.Rerank(context.Background(), "", passages, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].Passage.Page != 2 {
		t.Errorf("expected boosted passage first, got page %d", out[0].Passage.Page)
	}

	// Term boost 0.15 plus numeric boost 0.10, weighted by 0.1.
	diff := out[0].Score - out[1].Score
	if math.Abs(diff-0.1*0.25) > 1e-9 {
		t.Errorf("expected boost difference 0.025, got %f", diff)
	}
}

func TestRerank_LengthFit(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("some words", 1, false, 600, 0.5),
		scored("some words", 2, false, 200, 0.5),
	}

	out, err := r.Rerank(context.Background(), "", passages, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].Passage.Page != 2 {
		t.Errorf("expected ideal-length passage first, got page %d", out[0].Passage.Page)
	}
}

func TestRerank_StableTies(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("identical text", 1, false, 200, 0.5),
		scored("identical text", 2, false, 200, 0.5),
		scored("identical text", 3, false, 200, 0.5),
	}

	out, err := r.Rerank(context.Background(), "something else", passages, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []int{1, 2, 3} {
		if out[i].Passage.Page != want {
			t.Errorf("tie order broken at index %d: expected page %d, got %d", i, want, out[i].Passage.Page)
		}
	}
}

func TestRerank_EmptyQuery(t *testing.T) {
	r := NewHeuristic()

	passages := []vectorstore.ScoredPassage{
		scored("alpha", 1, false, 5, 0.8),
	}

	out, err := r.Rerank(context.Background(), "   ", passages, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No query words: keyword signal contributes zero.
	want := 0.6*0.8 + 0.1*(1.0/(1.0+195.0/200.0))
	if math.Abs(out[0].Score-want) > 1e-9 {
		t.Errorf("expected score %f, got %f", want, out[0].Score)
	}
}

func TestRerank_EmptyInput(t *testing.T) {
	r := NewHeuristic()

	out, err := r.Rerank(context.Background(), "query", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty result, got %d", len(out))
	}
}
