package classification

import (
	"context"
	"errors"
	"strings"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"
)

// Fallback reasons reported on heuristic results produced after a remote
// failure.
const (
	ReasonUnavailable = "provider_unavailable"
	ReasonCallFailed  = "provider_call_failed"
	ReasonMalformed   = "provider_response_malformed"
	ReasonTimeout     = "provider_timeout"
)

// Config controls the remote path of the Classifier.
type Config struct {
	RemoteEnabled bool
	Timeout       time.Duration
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{RemoteEnabled: true, Timeout: 20 * time.Second}
}

// Classifier delegates to a remote provider when one is configured and
// falls back to the heuristic and the fixed reply templates otherwise.
// Its methods never return an error.
type Classifier struct {
	remote  out.RemoteClassifier
	replier out.RemoteReplyGenerator
	cfg     Config
	log     *logger.Logger
}

// NewClassifier creates a Classifier. remote and replier may be nil.
func NewClassifier(remote out.RemoteClassifier, replier out.RemoteReplyGenerator, cfg Config, log *logger.Logger) *Classifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Classifier{
		remote:  remote,
		replier: replier,
		cfg:     cfg,
		log:     log.WithField("component", "classifier"),
	}
}

// RemoteActive reports whether Classify will try the remote provider.
func (c *Classifier) RemoteActive() bool {
	return c.cfg.RemoteEnabled && c.remote != nil
}

// remoteOutcome is the result of one remote attempt: either a parsed
// classification or the error that forces the fallback.
type remoteOutcome struct {
	category   domain.Category
	confidence float64
	cached     bool
	err        error
}

func (o remoteOutcome) ok() bool { return o.err == nil }

// Classify returns a classification of text.
func (c *Classifier) Classify(ctx context.Context, text string) domain.ClassificationResult {
	if !c.RemoteActive() {
		return ClassifyWithHeuristic(text)
	}

	outcome := c.classifyRemote(ctx, text)
	if outcome.ok() {
		source := domain.SourceLLM
		if outcome.cached {
			source = domain.SourceCache
		}
		return domain.ClassificationResult{
			Category:   outcome.category,
			Confidence: outcome.confidence,
			Source:     source,
			LLMUsed:    !outcome.cached,
		}
	}

	reason := fallbackReason(outcome.err)
	c.log.WithError(outcome.err).WithField("reason", reason).Warn("remote classification failed, using heuristic")
	result := ClassifyWithHeuristic(text)
	result.FallbackReason = reason
	return result
}

// ClassifyHeuristic always uses the heuristic path.
func (c *Classifier) ClassifyHeuristic(text string) domain.ClassificationResult {
	return ClassifyWithHeuristic(text)
}

func (c *Classifier) classifyRemote(ctx context.Context, text string) remoteOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		reply string
		hit   bool
		err   error
	)
	if cached, ok := c.remote.(out.CachedRemoteClassifier); ok {
		reply, hit, err = cached.ClassifyCached(ctx, text)
	} else {
		reply, err = c.remote.ClassifyText(ctx, text)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		return remoteOutcome{err: err}
	}
	category, confidence, err := ParseClassificationReply(reply)
	if err != nil {
		return remoteOutcome{err: err}
	}
	return remoteOutcome{category: category, confidence: confidence, cached: hit}
}

// GenerateReply drafts a reply for text. With no remote generator, or on any
// remote failure, it returns the fixed template for category.
func (c *Classifier) GenerateReply(ctx context.Context, category domain.Category, text string) string {
	if !c.cfg.RemoteEnabled || c.replier == nil {
		return FallbackReply(category)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reply, err := c.replier.GenerateReply(ctx, category, text)
	if err == nil {
		reply = strings.TrimSpace(reply)
		if reply != "" {
			return reply
		}
		err = out.NewProviderError("reply", out.ErrProviderResponseMalformed, errors.New("empty reply"))
	}

	c.log.WithError(err).WithField("reason", fallbackReason(err)).Warn("remote reply failed, using template")
	return FallbackReply(category)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, out.ErrProviderUnavailable):
		return ReasonUnavailable
	case errors.Is(err, out.ErrProviderResponseMalformed):
		return ReasonMalformed
	default:
		return ReasonCallFailed
	}
}
