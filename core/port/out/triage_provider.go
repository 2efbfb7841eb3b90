package out

import (
	"context"
	"errors"
	"fmt"

	"triage_server/core/domain"
)

// Provider failure kinds. Callers match them with errors.Is.
var (
	ErrProviderUnavailable       = errors.New("provider unavailable")
	ErrProviderCallFailed        = errors.New("provider call failed")
	ErrProviderResponseMalformed = errors.New("provider response malformed")
)

// ProviderError records a failed remote operation.
type ProviderError struct {
	Op   string // e.g. "classify", "reply"
	Kind error  // one of the ErrProvider* sentinels
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Is matches the failure kind.
func (e *ProviderError) Is(target error) bool {
	return e.Kind == target
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a provider failure of the given kind.
func NewProviderError(op string, kind, err error) *ProviderError {
	return &ProviderError{Op: op, Kind: kind, Err: err}
}

// RemoteClassifier asks a language model for a raw classification reply.
// The reply carries "CATEGORIA:" and "CONFIANÇA:" lines.
type RemoteClassifier interface {
	ClassifyText(ctx context.Context, text string) (string, error)
}

// CachedRemoteClassifier is a RemoteClassifier that can report whether the
// reply was served from a cache.
type CachedRemoteClassifier interface {
	RemoteClassifier
	ClassifyCached(ctx context.Context, text string) (reply string, hit bool, err error)
}

// RemoteReplyGenerator drafts a reply for an already classified email.
type RemoteReplyGenerator interface {
	GenerateReply(ctx context.Context, category domain.Category, text string) (string, error)
}

// TextNormalizer prepares free text for classification.
type TextNormalizer interface {
	Normalize(raw string) string
}

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(filename, contentType string, data []byte) (string, error)
}
