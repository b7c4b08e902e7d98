package pipeline

import (
	"math"
	"slices"
	"testing"

	"github.com/finrag/finrag/internal/vectorstore"
)

func passage(page int, hasNumbers bool, score float64) vectorstore.ScoredPassage {
	return vectorstore.ScoredPassage{
		Passage: vectorstore.Passage{
			Text:       "text",
			Page:       page,
			HasNumbers: hasNumbers,
			WordCount:  200,
		},
		Score: score,
	}
}

func TestScoreConfidence_NoSources(t *testing.T) {
	c := scoreConfidence(nil, "some answer")

	if c.Level != LevelLow {
		t.Errorf("expected LOW, got %s", c.Level)
	}
	if c.Score != 0.0 {
		t.Errorf("expected score 0, got %f", c.Score)
	}
	if !slices.Equal(c.Reasons, []string{ReasonNoSources}) {
		t.Errorf("expected [NO_SOURCES], got %v", c.Reasons)
	}
}

func TestScoreConfidence_NoScores(t *testing.T) {
	passages := []vectorstore.ScoredPassage{
		passage(1, true, math.NaN()),
		passage(2, true, math.NaN()),
	}

	c := scoreConfidence(passages, "some answer")

	if c.Level != LevelLow || c.Score != 0.0 {
		t.Errorf("expected LOW/0, got %s/%f", c.Level, c.Score)
	}
	if !slices.Equal(c.Reasons, []string{ReasonNoScores}) {
		t.Errorf("expected [NO_SCORES], got %v", c.Reasons)
	}
}

func TestScoreConfidence_HighConfidenceScenario(t *testing.T) {
	passages := []vectorstore.ScoredPassage{
		passage(10, true, 0.90),
		passage(11, true, 0.85),
		passage(49, true, 0.80),
	}

	c := scoreConfidence(passages, "Revenue was 86,153 million euros in 2023 [Page 10].")

	if c.Level != LevelHigh {
		t.Errorf("expected HIGH, got %s", c.Level)
	}
	if c.Score != 0.900 {
		t.Errorf("expected score 0.900, got %f", c.Score)
	}
	if len(c.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", c.Reasons)
	}
}

func TestScoreConfidence_TopSimilarityMonotonicity(t *testing.T) {
	below := []vectorstore.ScoredPassage{
		passage(1, true, 0.50),
		passage(2, true, 0.40),
	}
	at := []vectorstore.ScoredPassage{
		passage(1, true, 0.55),
		passage(2, true, 0.40),
	}

	answer := "no digits here"
	cBelow := scoreConfidence(below, answer)
	cAt := scoreConfidence(at, answer)

	if diff := cAt.Score - cBelow.Score; math.Abs(diff-0.40) > 1e-9 {
		t.Errorf("expected crossing the top-similarity threshold to add exactly 0.40, got %f", diff)
	}
	if !slices.Contains(cBelow.Reasons, ReasonLowTopSimilarity) {
		t.Error("expected LOW_TOP_SIMILARITY below threshold")
	}
	if slices.Contains(cAt.Reasons, ReasonLowTopSimilarity) {
		t.Error("expected LOW_TOP_SIMILARITY removed at threshold")
	}
}

func TestScoreConfidence_UnsupportedNumbersPenalty(t *testing.T) {
	passages := []vectorstore.ScoredPassage{
		passage(1, false, 0.20),
	}

	c := scoreConfidence(passages, "Revenue was 42 million")

	// Every check fails and the penalty applies; the score clamps at 0.
	if c.Score != 0.0 {
		t.Errorf("expected clamped score 0, got %f", c.Score)
	}
	if c.Level != LevelLow {
		t.Errorf("expected LOW, got %s", c.Level)
	}
	if !slices.Contains(c.Reasons, ReasonUnsupportedNumbers) {
		t.Errorf("expected ANSWER_HAS_NUMBERS_WITHOUT_SUPPORT, got %v", c.Reasons)
	}
	if len(c.Reasons) != 5 {
		t.Errorf("expected 5 reasons, got %v", c.Reasons)
	}
}

func TestScoreConfidence_NoPenaltyWithoutDigits(t *testing.T) {
	passages := []vectorstore.ScoredPassage{
		passage(1, false, 0.20),
	}

	c := scoreConfidence(passages, "no numeric content")

	if slices.Contains(c.Reasons, ReasonUnsupportedNumbers) {
		t.Errorf("penalty applied to a digit-free answer: %v", c.Reasons)
	}
}

func TestScoreConfidence_MediumLevel(t *testing.T) {
	// Top and average pass, but single page and no numeric support:
	// 0.40 + 0.20 = 0.60.
	passages := []vectorstore.ScoredPassage{
		passage(7, false, 0.80),
		passage(7, false, 0.70),
	}

	c := scoreConfidence(passages, "plain answer")

	if c.Level != LevelMedium {
		t.Errorf("expected MEDIUM, got %s", c.Level)
	}
	if c.Score != 0.600 {
		t.Errorf("expected score 0.600, got %f", c.Score)
	}
}
