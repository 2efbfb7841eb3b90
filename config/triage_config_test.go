package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.True(t, cfg.LLMEnabled)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 5, cfg.LLMBreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.LLMBreakerTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"http://127.0.0.1:5500", "http://localhost:5500"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.WorkerID)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_ENABLED", "false")
	t.Setenv("LLM_TIMEOUT_SEC", "5")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("WORKER_ID", "w-1")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.False(t, cfg.LLMEnabled)
	assert.False(t, cfg.RemoteConfigured())
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "w-1", cfg.WorkerID)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero timeout", "LLM_TIMEOUT_SEC", "0"},
		{"zero concurrency", "WORKER_CONCURRENCY", "0"},
		{"zero upload", "MAX_UPLOAD_MB", "0"},
		{"zero rate limit", "RATE_LIMIT_PER_MIN", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadFrom(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestRemoteConfigured(t *testing.T) {
	cfg := &Config{LLMEnabled: true}
	assert.False(t, cfg.RemoteConfigured())
	cfg.OpenAIAPIKey = "k"
	assert.True(t, cfg.RemoteConfigured())
}
