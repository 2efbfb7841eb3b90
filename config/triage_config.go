package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	DatabaseURL string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMEnabled    bool
	LLMTimeout    time.Duration

	// Circuit breaker around the provider
	LLMBreakerMaxFailures int
	LLMBreakerTimeout     time.Duration

	// Cache
	CacheTTL     time.Duration
	JobResultTTL time.Duration

	// Worker
	WorkerID          string
	WorkerConcurrency int

	// HTTP
	MaxUploadBytes  int64
	RateLimitPerMin int
	AllowedOrigins  []string
	StaticDir       string
}

// defaults mirrors the documented environment keys.
var defaults = map[string]any{
	"PORT":                "5000",
	"ENV":                 "development",
	"LOG_LEVEL":           "info",
	"OPENAI_MODEL":        "gpt-4o-mini",
	"LLM_ENABLED":         true,
	"LLM_TIMEOUT_SEC":     20,
	"LLM_CB_MAX_FAILURES": 5,
	"LLM_CB_TIMEOUT_SEC":  30,
	"CACHE_TTL_MIN":       60,
	"JOB_RESULT_TTL_MIN":  60,
	"WORKER_CONCURRENCY":  4,
	"MAX_UPLOAD_MB":       10,
	"RATE_LIMIT_PER_MIN":  60,
	"ALLOWED_ORIGINS":     "http://127.0.0.1:5500,http://localhost:5500",
	"STATIC_DIR":          "static",
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through the given viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),

		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		LLMEnabled:    v.GetBool("LLM_ENABLED"),
		LLMTimeout:    time.Duration(v.GetInt("LLM_TIMEOUT_SEC")) * time.Second,

		LLMBreakerMaxFailures: v.GetInt("LLM_CB_MAX_FAILURES"),
		LLMBreakerTimeout:     time.Duration(v.GetInt("LLM_CB_TIMEOUT_SEC")) * time.Second,

		CacheTTL:     time.Duration(v.GetInt("CACHE_TTL_MIN")) * time.Minute,
		JobResultTTL: time.Duration(v.GetInt("JOB_RESULT_TTL_MIN")) * time.Minute,

		WorkerID:          v.GetString("WORKER_ID"),
		WorkerConcurrency: v.GetInt("WORKER_CONCURRENCY"),

		MaxUploadBytes:  int64(v.GetInt("MAX_UPLOAD_MB")) << 20,
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		AllowedOrigins:  splitList(v.GetString("ALLOWED_ORIGINS")),
		StaticDir:       v.GetString("STATIC_DIR"),
	}

	if cfg.WorkerID == "" {
		cfg.WorkerID = generateWorkerID()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("config: LLM_TIMEOUT_SEC must be positive")
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("config: WORKER_CONCURRENCY must be at least 1")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimitPerMin < 1 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MIN must be at least 1")
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RemoteConfigured reports whether the remote classifier can be used.
func (c *Config) RemoteConfigured() bool {
	return c.LLMEnabled && c.OpenAIAPIKey != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
