package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"triage_server/core/port/out"
	"triage_server/pkg/logger"
)

// CachedClassifier serves repeated texts from a ResultCache and only calls
// the wrapped classifier on a miss. Cache failures degrade to a direct call.
type CachedClassifier struct {
	inner out.RemoteClassifier
	cache out.ResultCache
	model string
	ttl   time.Duration
	log   *logger.Logger
}

var _ out.CachedRemoteClassifier = (*CachedClassifier)(nil)

func NewCachedClassifier(inner out.RemoteClassifier, cache out.ResultCache, model string, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedClassifier{
		inner: inner,
		cache: cache,
		model: model,
		ttl:   ttl,
		log:   logger.WithField("component", "llm_cache"),
	}
}

// CacheKey returns the cache key of text for model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "classify:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedClassifier) ClassifyText(ctx context.Context, text string) (string, error) {
	reply, _, err := c.ClassifyCached(ctx, text)
	return reply, err
}

func (c *CachedClassifier) ClassifyCached(ctx context.Context, text string) (string, bool, error) {
	key := CacheKey(c.model, text)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).Warn("classification cache read failed")
	} else if ok {
		return cached, true, nil
	}

	reply, err := c.inner.ClassifyText(ctx, text)
	if err != nil {
		return "", false, err
	}

	if reply == "" {
		return reply, false, nil
	}
	if err := c.cache.Set(ctx, key, reply, c.ttl); err != nil {
		c.log.WithError(err).Warn("classification cache write failed")
	}
	return reply, false, nil
}
