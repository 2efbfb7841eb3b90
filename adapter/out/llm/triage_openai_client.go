// Package llm implements the remote classification ports on top of an
// OpenAI-compatible chat-completions API.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/httputil"
	"triage_server/pkg/logger"
	"triage_server/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible endpoints

	BreakerMaxFailures int
	BreakerTimeout     time.Duration
}

// Client calls the chat-completions API behind a circuit breaker.
type Client struct {
	client  *openai.Client
	model   string
	breaker *resilience.CircuitBreaker
}

var (
	_ out.RemoteClassifier     = (*Client)(nil)
	_ out.RemoteReplyGenerator = (*Client)(nil)
)

// NewClient returns nil when no API key is configured; callers then run
// heuristic-only.
func NewClient(cfg ClientConfig) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = httputil.NewPooledClient(httputil.LLMClientConfig())

	cbCfg := resilience.DefaultCircuitBreakerConfig("openai")
	if cfg.BreakerMaxFailures > 0 {
		cbCfg.ConsecutiveFailures = uint32(cfg.BreakerMaxFailures)
	}
	if cfg.BreakerTimeout > 0 {
		cbCfg.Timeout = cfg.BreakerTimeout
	}
	breaker := resilience.NewCircuitBreaker(cbCfg, func(name, from, to string) {
		logger.WithFields(map[string]any{"breaker": name, "from": from, "to": to}).Warn("circuit breaker state changed")
	})

	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		breaker: breaker,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Breaker exposes the circuit breaker for stats.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// ClassifyText returns the raw CATEGORIA/CONFIANÇA reply for text.
func (c *Client) ClassifyText(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, "classify", openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classificationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: classificationUserPrompt(text)},
		},
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
}

// GenerateReply drafts a reply for text given its category.
func (c *Client) GenerateReply(ctx context.Context, category domain.Category, text string) (string, error) {
	return c.complete(ctx, "reply", openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: replySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: replyUserPrompt(category, text)},
		},
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
}

func (c *Client) complete(ctx context.Context, op string, req openai.ChatCompletionRequest) (string, error) {
	resp, err := resilience.ExecuteValue(c.breaker, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequest) {
			return "", out.NewProviderError(op, out.ErrProviderUnavailable, err)
		}
		return "", out.NewProviderError(op, out.ErrProviderCallFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", out.NewProviderError(op, out.ErrProviderResponseMalformed, errors.New("no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
