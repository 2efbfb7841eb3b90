package classification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type fakeRemote struct {
	reply string
	err   error
	calls int
	wait  bool
}

func (f *fakeRemote) ClassifyText(ctx context.Context, _ string) (string, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return "", out.NewProviderError("classify", out.ErrProviderCallFailed, ctx.Err())
	}
	return f.reply, f.err
}

type fakeReplier struct {
	reply string
	err   error
	calls int
}

func (f *fakeReplier) GenerateReply(_ context.Context, _ domain.Category, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newTestClassifier(remote out.RemoteClassifier, replier out.RemoteReplyGenerator, cfg Config) (*Classifier, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.LevelDebug, Output: &buf})
	return NewClassifier(remote, replier, cfg, log), &buf
}

func TestClassifierUsesRemote(t *testing.T) {
	remote := &fakeRemote{reply: "CATEGORIA: Improdutivo\nCONFIANÇA: 0.91"}
	c, _ := newTestClassifier(remote, nil, DefaultConfig())

	got := c.Classify(context.Background(), "Preciso do relatório?")

	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, domain.CategoryImprodutivo, got.Category)
	assert.InDelta(t, 0.91, got.Confidence, confidenceDelta)
	assert.Equal(t, domain.SourceLLM, got.Source)
	assert.True(t, got.LLMUsed)
	assert.Empty(t, got.FallbackReason)
	assert.Nil(t, got.Scores)
}

func TestClassifierFallsBackSilently(t *testing.T) {
	text := "Muito obrigado pelo seu trabalho, ficou excelente!"
	heuristic := ClassifyWithHeuristic(text)

	tests := []struct {
		name       string
		remote     *fakeRemote
		wantReason string
	}{
		{"unavailable", &fakeRemote{err: out.NewProviderError("classify", out.ErrProviderUnavailable, nil)}, ReasonUnavailable},
		{"call failed", &fakeRemote{err: out.NewProviderError("classify", out.ErrProviderCallFailed, errors.New("500"))}, ReasonCallFailed},
		{"plain error", &fakeRemote{err: errors.New("boom")}, ReasonCallFailed},
		{"malformed reply", &fakeRemote{reply: "não sei"}, ReasonMalformed},
		{"timeout", &fakeRemote{wait: true}, ReasonTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, logs := newTestClassifier(tt.remote, nil, Config{RemoteEnabled: true, Timeout: 20 * time.Millisecond})

			got := c.Classify(context.Background(), text)

			assert.Equal(t, heuristic.Category, got.Category)
			assert.InDelta(t, heuristic.Confidence, got.Confidence, confidenceDelta)
			assert.Equal(t, domain.SourceHeuristic, got.Source)
			assert.False(t, got.LLMUsed)
			assert.Equal(t, tt.wantReason, got.FallbackReason)
			assert.Contains(t, logs.String(), "remote classification failed")
		})
	}
}

func TestClassifierHeuristicOnly(t *testing.T) {
	remote := &fakeRemote{reply: "CATEGORIA: Improdutivo\nCONFIANÇA: 1"}

	disabled, _ := newTestClassifier(remote, nil, Config{RemoteEnabled: false})
	got := disabled.Classify(context.Background(), "Quando podemos marcar?")
	assert.Equal(t, domain.SourceHeuristic, got.Source)
	assert.Empty(t, got.FallbackReason)
	assert.False(t, disabled.RemoteActive())

	enabled, _ := newTestClassifier(remote, nil, DefaultConfig())
	got = enabled.ClassifyHeuristic("Quando podemos marcar?")
	assert.Equal(t, domain.SourceHeuristic, got.Source)
	assert.Equal(t, 0, remote.calls)

	unconfigured, _ := newTestClassifier(nil, nil, DefaultConfig())
	assert.False(t, unconfigured.RemoteActive())
	assert.Equal(t, domain.SourceHeuristic, unconfigured.Classify(context.Background(), "ok").Source)
}

func TestGenerateReply(t *testing.T) {
	ctx := context.Background()

	t.Run("remote reply is trimmed", func(t *testing.T) {
		replier := &fakeReplier{reply: "  Olá, segue o relatório.  "}
		c, _ := newTestClassifier(nil, replier, DefaultConfig())
		assert.Equal(t, "Olá, segue o relatório.", c.GenerateReply(ctx, domain.CategoryProdutivo, "texto"))
	})

	t.Run("empty remote reply falls back", func(t *testing.T) {
		replier := &fakeReplier{reply: "   "}
		c, logs := newTestClassifier(nil, replier, DefaultConfig())
		assert.Equal(t, FallbackReply(domain.CategoryImprodutivo), c.GenerateReply(ctx, domain.CategoryImprodutivo, "texto"))
		assert.Contains(t, logs.String(), ReasonMalformed)
	})

	t.Run("remote error falls back", func(t *testing.T) {
		replier := &fakeReplier{err: out.NewProviderError("reply", out.ErrProviderCallFailed, errors.New("429"))}
		c, _ := newTestClassifier(nil, replier, DefaultConfig())
		assert.Equal(t, FallbackReply(domain.CategoryProdutivo), c.GenerateReply(ctx, domain.CategoryProdutivo, "texto"))
	})

	t.Run("no generator uses templates", func(t *testing.T) {
		c, _ := newTestClassifier(nil, nil, DefaultConfig())
		assert.Equal(t, FallbackReply(domain.CategoryImprodutivo), c.GenerateReply(ctx, domain.CategoryImprodutivo, "texto"))
		assert.Equal(t, FallbackReply(domain.CategoryProdutivo), c.GenerateReply(ctx, domain.Category("Outro"), "texto"))
	})

	t.Run("disabled remote skips generator", func(t *testing.T) {
		replier := &fakeReplier{reply: "remota"}
		c, _ := newTestClassifier(nil, replier, Config{RemoteEnabled: false})
		assert.Equal(t, FallbackReply(domain.CategoryProdutivo), c.GenerateReply(ctx, domain.CategoryProdutivo, "texto"))
		assert.Equal(t, 0, replier.calls)
	})
}

type fakeCachedRemote struct {
	fakeRemote
	hit bool
}

func (f *fakeCachedRemote) ClassifyCached(ctx context.Context, text string) (string, bool, error) {
	reply, err := f.ClassifyText(ctx, text)
	return reply, f.hit, err
}

func TestClassifierReportsCacheHits(t *testing.T) {
	remote := &fakeCachedRemote{fakeRemote: fakeRemote{reply: "CATEGORIA: Produtivo\nCONFIANÇA: 0.7"}, hit: true}
	c, _ := newTestClassifier(remote, nil, DefaultConfig())

	got := c.Classify(context.Background(), "texto")
	assert.Equal(t, domain.SourceCache, got.Source)
	assert.False(t, got.LLMUsed)

	remote.hit = false
	got = c.Classify(context.Background(), "texto")
	assert.Equal(t, domain.SourceLLM, got.Source)
	assert.True(t, got.LLMUsed)
}
