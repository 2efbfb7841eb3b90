package in

import (
	"context"

	"triage_server/core/domain"
)

// TriageService classifies emails and drafts replies.
type TriageService interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*domain.Analysis, error)
	AnalyzeUpload(ctx context.Context, req *UploadRequest) (*domain.Analysis, error)
}

// AnalyzeRequest is a free-text classification request.
type AnalyzeRequest struct {
	Text          string `json:"text"`
	HeuristicOnly bool   `json:"heuristic_only"`
}

// UploadRequest is an uploaded email file.
type UploadRequest struct {
	Filename      string
	ContentType   string
	Data          []byte
	HeuristicOnly bool
}
