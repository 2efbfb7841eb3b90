// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"triage_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

const historySchema = `
CREATE TABLE IF NOT EXISTS classification_history (
	id              UUID PRIMARY KEY,
	category        TEXT NOT NULL,
	confidence      DOUBLE PRECISION NOT NULL,
	source          TEXT NOT NULL,
	signals         TEXT[] NOT NULL DEFAULT '{}',
	llm_used        BOOLEAN NOT NULL DEFAULT FALSE,
	fallback_reason TEXT,
	text_hash       TEXT NOT NULL,
	excerpt         TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_classification_history_created_at
	ON classification_history (created_at DESC);
`

// HistoryAdapter implements out.HistoryRepository on PostgreSQL.
type HistoryAdapter struct {
	db *sqlx.DB
}

// NewHistoryAdapter creates a new HistoryAdapter.
func NewHistoryAdapter(db *sqlx.DB) *HistoryAdapter {
	return &HistoryAdapter{db: db}
}

// EnsureSchema creates the history table when missing.
func (a *HistoryAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// historyRow represents the database row.
type historyRow struct {
	ID             uuid.UUID      `db:"id"`
	Category       string         `db:"category"`
	Confidence     float64        `db:"confidence"`
	Source         string         `db:"source"`
	Signals        pq.StringArray `db:"signals"`
	LLMUsed        bool           `db:"llm_used"`
	FallbackReason sql.NullString `db:"fallback_reason"`
	TextHash       string         `db:"text_hash"`
	Excerpt        string         `db:"excerpt"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r *historyRow) toEntity() *domain.HistoryEntry {
	entry := &domain.HistoryEntry{
		ID:         r.ID,
		Category:   domain.Category(r.Category),
		Confidence: r.Confidence,
		Source:     domain.ResultSource(r.Source),
		Signals:    []string(r.Signals),
		LLMUsed:    r.LLMUsed,
		TextHash:   r.TextHash,
		Excerpt:    r.Excerpt,
		CreatedAt:  r.CreatedAt,
	}
	if r.FallbackReason.Valid {
		entry.FallbackReason = r.FallbackReason.String
	}
	if entry.Signals == nil {
		entry.Signals = []string{}
	}
	return entry
}

func fromEntity(e *domain.HistoryEntry) historyRow {
	row := historyRow{
		ID:         e.ID,
		Category:   string(e.Category),
		Confidence: e.Confidence,
		Source:     string(e.Source),
		Signals:    pq.StringArray(e.Signals),
		LLMUsed:    e.LLMUsed,
		TextHash:   e.TextHash,
		Excerpt:    e.Excerpt,
		CreatedAt:  e.CreatedAt,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.Signals == nil {
		row.Signals = pq.StringArray{}
	}
	if e.FallbackReason != "" {
		row.FallbackReason = sql.NullString{String: e.FallbackReason, Valid: true}
	}
	return row
}

// Append inserts one entry.
func (a *HistoryAdapter) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	row := fromEntity(entry)
	query := `
		INSERT INTO classification_history
			(id, category, confidence, source, signals, llm_used, fallback_reason, text_hash, excerpt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := a.db.ExecContext(ctx, query,
		row.ID, row.Category, row.Confidence, row.Source, pq.Array([]string(row.Signals)),
		row.LLMUsed, row.FallbackReason, row.TextHash, row.Excerpt, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	entry.ID = row.ID
	entry.CreatedAt = row.CreatedAt
	return nil
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// Recent returns the newest entries first.
func (a *HistoryAdapter) Recent(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	var rows []historyRow
	query := `
		SELECT id, category, confidence, source, signals, llm_used, fallback_reason, text_hash, excerpt, created_at
		FROM classification_history
		ORDER BY created_at DESC
		LIMIT $1`

	if err := a.db.SelectContext(ctx, &rows, query, ClampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]*domain.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntity()
	}
	return entries, nil
}

// CountByCategory aggregates the whole table.
func (a *HistoryAdapter) CountByCategory(ctx context.Context) ([]domain.CategoryStat, error) {
	var stats []domain.CategoryStat
	query := `
		SELECT category, COUNT(*) AS count, COALESCE(AVG(confidence), 0) AS avg_confidence
		FROM classification_history
		GROUP BY category
		ORDER BY category`

	if err := a.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	return stats, nil
}

// Ping checks the connection.
func (a *HistoryAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// DB exposes the underlying handle for pool statistics.
func (a *HistoryAdapter) DB() *sql.DB {
	return a.db.DB
}
