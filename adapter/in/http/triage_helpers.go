package http

import (
	"io"
	"mime/multipart"
	"strconv"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ClassifyResponse is the flat result shape of /classify and /upload.
type ClassifyResponse struct {
	Category       domain.Category     `json:"category"`
	Confidence     float64             `json:"confidence"`
	Reply          string              `json:"reply"`
	Subject        string              `json:"subject"`
	Content        string              `json:"content"`
	Source         domain.ResultSource `json:"source"`
	Signals        []string            `json:"signals"`
	LLMUsed        bool                `json:"llm_used"`
	FallbackReason string              `json:"fallback_reason,omitempty"`
	DurationMs     float64             `json:"duration_ms"`
}

func toClassifyResponse(a *domain.Analysis) ClassifyResponse {
	signals := a.Result.Signals
	if signals == nil {
		signals = []string{}
	}
	return ClassifyResponse{
		Category:       a.Result.Category,
		Confidence:     a.Result.Confidence,
		Reply:          a.Reply,
		Subject:        a.Subject,
		Content:        a.Content,
		Source:         a.Result.Source,
		Signals:        signals,
		LLMUsed:        a.Result.LLMUsed,
		FallbackReason: a.Result.FallbackReason,
		DurationMs:     float64(a.Duration.Microseconds()) / 1000.0,
	}
}

func parseAnalyzeRequest(c *fiber.Ctx) (*in.AnalyzeRequest, error) {
	var req in.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperr.BadRequest("invalid request body")
	}
	return &req, nil
}

// parseUploadRequest reads the multipart "file" field, capped at maxBytes.
func parseUploadRequest(c *fiber.Ctx, maxBytes int64) (*in.UploadRequest, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, apperr.MissingField("file")
	}
	if fh.Size > maxBytes {
		return nil, apperr.PayloadTooLarge(maxBytes)
	}

	data, err := readFormFile(fh, maxBytes)
	if err != nil {
		return nil, err
	}

	return &in.UploadRequest{
		Filename:      fh.Filename,
		ContentType:   fh.Header.Get("Content-Type"),
		Data:          data,
		HeuristicOnly: formBool(c.FormValue("heuristic_only")),
	}, nil
}

func readFormFile(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.InvalidInput("file", "unreadable upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, apperr.InvalidInput("file", "unreadable upload")
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.PayloadTooLarge(maxBytes)
	}
	return data, nil
}

// chain appends h to a private copy of guard.
func chain(guard []fiber.Handler, h fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guard)+1)
	handlers = append(handlers, guard...)
	return append(handlers, h)
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
