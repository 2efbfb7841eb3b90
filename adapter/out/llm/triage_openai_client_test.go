package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, content string, seen *recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{},
		}
		if content != "" {
			resp["choices"] = []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(url string) *Client {
	return NewClient(ClientConfig{APIKey: "sk-test", BaseURL: url + "/v1/", BreakerMaxFailures: 1})
}

func TestNewClientRequiresKey(t *testing.T) {
	assert.Nil(t, NewClient(ClientConfig{}))
	c := NewClient(ClientConfig{APIKey: "k"})
	require.NotNil(t, c)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestClassifyTextSendsPrompt(t *testing.T) {
	var seen recordedRequest
	srv := chatServer(t, http.StatusOK, "  CATEGORIA: Produtivo\nCONFIANÇA: 0.9  ", &seen)
	defer srv.Close()

	reply, err := testClient(srv.URL).ClassifyText(context.Background(), "preciso relatório")
	require.NoError(t, err)

	assert.Equal(t, "CATEGORIA: Produtivo\nCONFIANÇA: 0.9", reply)
	assert.Equal(t, DefaultModel, seen.Model)
	assert.InDelta(t, 0.1, seen.Temperature, 1e-6)
	assert.Equal(t, 150, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[0].Content, "CATEGORIA: [Produtivo ou Improdutivo]")
	assert.Equal(t, "Email para classificar:\n\npreciso relatório", seen.Messages[1].Content)
}

func TestGenerateReplySendsCategory(t *testing.T) {
	var seen recordedRequest
	srv := chatServer(t, http.StatusOK, "Olá! Vou verificar.", &seen)
	defer srv.Close()

	reply, err := testClient(srv.URL).GenerateReply(context.Background(), domain.CategoryImprodutivo, "Obrigado!")
	require.NoError(t, err)

	assert.Equal(t, "Olá! Vou verificar.", reply)
	assert.InDelta(t, 0.7, seen.Temperature, 1e-6)
	assert.Equal(t, 200, seen.MaxTokens)
	assert.Contains(t, seen.Messages[1].Content, "Categoria do email: Improdutivo")
	assert.Contains(t, seen.Messages[1].Content, "Obrigado!")
}

func TestClientErrorKinds(t *testing.T) {
	empty := chatServer(t, http.StatusOK, "", nil)
	defer empty.Close()
	_, err := testClient(empty.URL).ClassifyText(context.Background(), "x")
	assert.ErrorIs(t, err, out.ErrProviderResponseMalformed)

	failing := chatServer(t, http.StatusInternalServerError, "", nil)
	defer failing.Close()
	c := testClient(failing.URL)
	_, err = c.ClassifyText(context.Background(), "x")
	assert.ErrorIs(t, err, out.ErrProviderCallFailed)

	// one more failure trips the breaker (more than one consecutive failure)
	_, _ = c.ClassifyText(context.Background(), "x")
	_, err = c.ClassifyText(context.Background(), "x")
	assert.ErrorIs(t, err, out.ErrProviderUnavailable)
	assert.Equal(t, "open", c.Breaker().State())
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

type countingRemote struct {
	calls atomic.Int32
	reply string
}

func (c *countingRemote) ClassifyText(context.Context, string) (string, error) {
	c.calls.Add(1)
	return c.reply, nil
}

func TestCachedClassifier(t *testing.T) {
	inner := &countingRemote{reply: "CATEGORIA: Improdutivo\nCONFIANÇA: 0.8"}
	cache := &mapCache{data: map[string]string{}}
	cc := NewCachedClassifier(inner, cache, "gpt-4o-mini", time.Minute)
	ctx := context.Background()

	reply, hit, err := cc.ClassifyCached(ctx, "obrigado")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, inner.reply, reply)

	reply, hit, err = cc.ClassifyCached(ctx, "obrigado")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, inner.reply, reply)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err = cc.ClassifyText(ctx, "outro texto")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Len(t, cache.data, 2)
}

func TestCachedClassifierSurvivesCacheErrors(t *testing.T) {
	inner := &countingRemote{reply: "CATEGORIA: Produtivo"}
	cache := &mapCache{data: map[string]string{}, err: assert.AnError}
	cc := NewCachedClassifier(inner, cache, "m", 0)

	reply, hit, err := cc.ClassifyCached(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "CATEGORIA: Produtivo", reply)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("gpt-4o-mini", "texto")
	assert.Equal(t, a, CacheKey("gpt-4o-mini", "texto"))
	assert.NotEqual(t, a, CacheKey("gpt-4o", "texto"))
	assert.NotEqual(t, a, CacheKey("gpt-4o-mini", "texto!"))
	assert.Len(t, a, len("classify:gpt-4o-mini:")+64)
}
