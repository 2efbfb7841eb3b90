package domain

import "strings"

// Category is the binary triage label of an email.
type Category string

const (
	CategoryProdutivo   Category = "Produtivo"   // requires an action or a reply
	CategoryImprodutivo Category = "Improdutivo" // courtesy, acknowledgement, no action needed
)

// AllCategories lists the valid categories in display order.
var AllCategories = []Category{CategoryProdutivo, CategoryImprodutivo}

// ParseCategory maps any string mentioning "Improdutivo" to CategoryImprodutivo
// and everything else to CategoryProdutivo.
func ParseCategory(s string) Category {
	if strings.Contains(s, string(CategoryImprodutivo)) {
		return CategoryImprodutivo
	}
	return CategoryProdutivo
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryProdutivo || c == CategoryImprodutivo
}

func (c Category) String() string {
	return string(c)
}

// ResultSource identifies which path produced a classification.
type ResultSource string

const (
	SourceHeuristic ResultSource = "heuristic"
	SourceLLM       ResultSource = "llm"
	SourceCache     ResultSource = "cache"
)

// Scores holds the two finalized heuristic totals.
type Scores struct {
	Improdutivo float64 `json:"improdutivo"`
	Produtivo   float64 `json:"produtivo"`
}

// Diff returns the absolute difference between the two totals.
func (s Scores) Diff() float64 {
	if s.Improdutivo > s.Produtivo {
		return s.Improdutivo - s.Produtivo
	}
	return s.Produtivo - s.Improdutivo
}

// ClassificationResult is the outcome of classifying one text.
type ClassificationResult struct {
	Category       Category     `json:"category"`
	Confidence     float64      `json:"confidence"`
	Source         ResultSource `json:"source"`
	Signals        []string     `json:"signals,omitempty"`
	Scores         *Scores      `json:"scores,omitempty"` // heuristic only
	LLMUsed        bool         `json:"llm_used"`
	FallbackReason string       `json:"fallback_reason,omitempty"`
}
