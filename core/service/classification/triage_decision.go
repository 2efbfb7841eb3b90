package classification

import (
	"math"

	"triage_server/core/domain"
)

const (
	baseConfidence = 0.6
	confidenceStep = 0.08
	maxConfidence  = 0.95
)

// Decide turns heuristic totals into a category and confidence.
// Ties go to Produtivo with the base confidence.
func Decide(s domain.Scores) (domain.Category, float64) {
	confidence := math.Min(maxConfidence, baseConfidence+s.Diff()*confidenceStep)
	if s.Improdutivo > s.Produtivo {
		return domain.CategoryImprodutivo, confidence
	}
	return domain.CategoryProdutivo, confidence
}

// ClassifyWithHeuristic scores text and applies the decision rule.
func ClassifyWithHeuristic(text string) domain.ClassificationResult {
	sr := Score(text)
	category, confidence := Decide(sr.Scores)
	scores := sr.Scores
	return domain.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Source:     domain.SourceHeuristic,
		Signals:    sr.Signals,
		Scores:     &scores,
	}
}
