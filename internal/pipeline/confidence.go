package pipeline

import (
	"math"
	"strings"
	"unicode"

	"github.com/finrag/finrag/internal/vectorstore"
)

// Confidence levels.
const (
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)

// Reason codes explaining why a confidence check did not contribute.
const (
	ReasonNoSources          = "NO_SOURCES"
	ReasonNoScores           = "NO_SCORES"
	ReasonLowTopSimilarity   = "LOW_TOP_SIMILARITY"
	ReasonLowAvgSimilarity   = "LOW_AVG_SIMILARITY"
	ReasonSinglePageEvidence = "SINGLE_PAGE_EVIDENCE"
	ReasonLowNumericEvidence = "LOW_NUMERIC_EVIDENCE"
	ReasonUnsupportedNumbers = "ANSWER_HAS_NUMBERS_WITHOUT_SUPPORT"
)

// Check thresholds and contributions.
const (
	topSimilarityThreshold = 0.55
	topSimilarityBonus     = 0.40
	avgSimilarityThreshold = 0.45
	avgSimilarityBonus     = 0.20
	pageDiversityBonus     = 0.15
	numericSupportBonus    = 0.15
	unsupportedPenalty     = 0.20
)

// scoreConfidence derives a trust signal for the generated answer from the
// final passage set. Deterministic, pure function of its inputs.
func scoreConfidence(passages []vectorstore.ScoredPassage, answer string) Confidence {
	if len(passages) == 0 {
		return Confidence{Level: LevelLow, Score: 0.0, Reasons: []string{ReasonNoSources}}
	}

	scores := make([]float64, 0, len(passages))
	for _, sp := range passages {
		if !math.IsNaN(sp.Score) {
			scores = append(scores, sp.Score)
		}
	}
	if len(scores) == 0 {
		return Confidence{Level: LevelLow, Score: 0.0, Reasons: []string{ReasonNoScores}}
	}

	top := scores[0]
	sum := 0.0
	for _, s := range scores {
		if s > top {
			top = s
		}
		sum += s
	}
	avg := sum / float64(len(scores))

	numericChunks := 0
	pages := make(map[int]struct{}, len(passages))
	for _, sp := range passages {
		if sp.Passage.HasNumbers {
			numericChunks++
		}
		pages[sp.Passage.Page] = struct{}{}
	}

	score := 0.0
	reasons := []string{}

	if top >= topSimilarityThreshold {
		score += topSimilarityBonus
	} else {
		reasons = append(reasons, ReasonLowTopSimilarity)
	}

	if avg >= avgSimilarityThreshold {
		score += avgSimilarityBonus
	} else {
		reasons = append(reasons, ReasonLowAvgSimilarity)
	}

	if len(pages) >= 2 {
		score += pageDiversityBonus
	} else {
		reasons = append(reasons, ReasonSinglePageEvidence)
	}

	if numericChunks >= 2 {
		score += numericSupportBonus
	} else {
		reasons = append(reasons, ReasonLowNumericEvidence)
	}

	// An answer citing numbers with zero numeric passages behind it is
	// suspect.
	if answerHasDigit(answer) && numericChunks == 0 {
		score -= unsupportedPenalty
		reasons = append(reasons, ReasonUnsupportedNumbers)
	}

	score = math.Min(1.0, math.Max(0.0, score))

	level := LevelLow
	switch {
	case score >= 0.75:
		level = LevelHigh
	case score >= 0.50:
		level = LevelMedium
	}

	return Confidence{Level: level, Score: round3(score), Reasons: reasons}
}

func answerHasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
