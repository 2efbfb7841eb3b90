// Package mail runs the email triage pipeline: text extraction, normalization,
// classification and reply drafting.
package mail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/core/service/classification"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"
	"triage_server/pkg/metrics"

	"github.com/google/uuid"
)

const excerptRunes = 200

// passthrough is used when no normalizer is configured.
type passthrough struct{}

func (passthrough) Normalize(raw string) string { return raw }

type Service struct {
	classifier *classification.Classifier
	normalizer out.TextNormalizer
	extractor  out.TextExtractor
	history    out.HistoryRepository // optional
	latency    *metrics.LatencyRegistry
	maxUpload  int64
	log        *logger.Logger
}

// Options holds the optional collaborators of Service.
type Options struct {
	Normalizer     out.TextNormalizer
	Extractor      out.TextExtractor
	History        out.HistoryRepository
	Latency        *metrics.LatencyRegistry
	MaxUploadBytes int64
	Logger         *logger.Logger
}

var _ in.TriageService = (*Service)(nil)

func NewService(classifier *classification.Classifier, opts Options) *Service {
	s := &Service{
		classifier: classifier,
		normalizer: opts.Normalizer,
		extractor:  opts.Extractor,
		history:    opts.History,
		latency:    opts.Latency,
		maxUpload:  opts.MaxUploadBytes,
		log:        opts.Logger,
	}
	if s.normalizer == nil {
		s.normalizer = passthrough{}
	}
	if s.latency == nil {
		s.latency = metrics.NewLatencyRegistry(1000)
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.WithField("component", "triage")
	return s
}

// Latency exposes the per-source latency registry.
func (s *Service) Latency() *metrics.LatencyRegistry {
	return s.latency
}

// Analyze classifies free text. The normalized text is classified; the reply
// is drafted from the raw text.
func (s *Service) Analyze(ctx context.Context, req *in.AnalyzeRequest) (*domain.Analysis, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, apperr.MissingField("text")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	parts := domain.EmailParts{
		Subject:       domain.SubjectFromBody,
		Content:       req.Text,
		TextToProcess: req.Text,
	}
	return s.run(ctx, parts, req.Text, req.HeuristicOnly), nil
}

// AnalyzeUpload extracts text from an uploaded file, isolates the email body
// and classifies it. The reply is drafted from the cleaned body.
func (s *Service) AnalyzeUpload(ctx context.Context, req *in.UploadRequest) (*domain.Analysis, error) {
	if req == nil || len(req.Data) == 0 {
		return nil, apperr.MissingField("file")
	}
	if int64(len(req.Data)) > s.maxUpload {
		return nil, apperr.PayloadTooLarge(s.maxUpload)
	}
	if s.extractor == nil {
		return nil, apperr.Unavailable("upload")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze upload: %w", err)
	}

	raw, err := s.extractor.Extract(req.Filename, req.ContentType, req.Data)
	if err != nil {
		return nil, apperr.InvalidInput("file", err.Error())
	}

	parts := ExtractEmailParts(raw)
	return s.run(ctx, parts, parts.Content, req.HeuristicOnly), nil
}

func (s *Service) run(ctx context.Context, parts domain.EmailParts, replySource string, heuristicOnly bool) *domain.Analysis {
	start := time.Now()

	pre := s.normalizer.Normalize(parts.TextToProcess)

	var (
		result domain.ClassificationResult
		reply  string
	)
	if heuristicOnly {
		result = s.classifier.ClassifyHeuristic(pre)
		reply = classification.FallbackReply(result.Category)
	} else {
		result = s.classifier.Classify(ctx, pre)
		reply = s.classifier.GenerateReply(ctx, result.Category, replySource)
	}

	elapsed := time.Since(start)
	s.record(result, elapsed)

	analysis := &domain.Analysis{
		Result:      result,
		Reply:       reply,
		Subject:     parts.Subject,
		Content:     parts.Content,
		Duration:    elapsed,
		ProcessedAt: time.Now().UTC(),
	}

	s.log.WithContext(ctx).WithDuration(elapsed).WithFields(map[string]any{
		"category":   result.Category,
		"confidence": result.Confidence,
		"source":     result.Source,
	}).Debug("email classified")

	s.appendHistory(ctx, parts.TextToProcess, result)
	return analysis
}

func (s *Service) record(result domain.ClassificationResult, elapsed time.Duration) {
	s.latency.Record(string(result.Source), elapsed)
	s.latency.Inc("category:" + string(result.Category))
	if result.FallbackReason != "" {
		s.latency.Inc("fallback:" + result.FallbackReason)
	}
}

func (s *Service) appendHistory(ctx context.Context, text string, result domain.ClassificationResult) {
	if s.history == nil {
		return
	}
	entry := NewHistoryEntry(text, result)
	if err := s.history.Append(ctx, entry); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("failed to append classification history")
	}
}

// NewHistoryEntry builds the persisted record of a classification.
func NewHistoryEntry(text string, result domain.ClassificationResult) *domain.HistoryEntry {
	sum := sha256.Sum256([]byte(text))
	signals := result.Signals
	if signals == nil {
		signals = []string{}
	}
	return &domain.HistoryEntry{
		ID:             uuid.New(),
		Category:       result.Category,
		Confidence:     result.Confidence,
		Source:         result.Source,
		Signals:        signals,
		LLMUsed:        result.LLMUsed,
		FallbackReason: result.FallbackReason,
		TextHash:       hex.EncodeToString(sum[:]),
		Excerpt:        excerpt(text, excerptRunes),
		CreatedAt:      time.Now().UTC(),
	}
}

func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "…"
}
