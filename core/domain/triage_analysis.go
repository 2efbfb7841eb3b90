package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subject markers produced by email-part extraction.
const (
	SubjectNotDetected = "(Sem Assunto Detectado)"
	SubjectFromBody    = "(Texto Fornecido no Body)"
)

// EmailParts is the subject/content split of a raw email text.
type EmailParts struct {
	Subject       string `json:"subject"`
	Content       string `json:"content"`
	TextToProcess string `json:"-"`
}

// Analysis is the full response for one processed email.
type Analysis struct {
	Result      ClassificationResult `json:"result"`
	Reply       string               `json:"reply"`
	Subject     string               `json:"subject"`
	Content     string               `json:"content"`
	Duration    time.Duration        `json:"-"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// HistoryEntry is a persisted classification.
type HistoryEntry struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	Category       Category     `json:"category" db:"category"`
	Confidence     float64      `json:"confidence" db:"confidence"`
	Source         ResultSource `json:"source" db:"source"`
	Signals        []string     `json:"signals" db:"-"`
	LLMUsed        bool         `json:"llm_used" db:"llm_used"`
	FallbackReason string       `json:"fallback_reason,omitempty" db:"fallback_reason"`
	TextHash       string       `json:"text_hash" db:"text_hash"`
	Excerpt        string       `json:"excerpt" db:"excerpt"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// CategoryStat aggregates history by category.
type CategoryStat struct {
	Category      Category `json:"category" db:"category"`
	Count         int64    `json:"count" db:"count"`
	AvgConfidence float64  `json:"avg_confidence" db:"avg_confidence"`
}
