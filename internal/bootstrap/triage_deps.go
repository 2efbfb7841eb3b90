package bootstrap

import (
	"context"
	"errors"
	"time"

	cacheadapter "triage_server/adapter/out/cache"
	"triage_server/adapter/out/extract"
	"triage_server/adapter/out/llm"
	"triage_server/adapter/out/persistence"
	"triage_server/config"
	"triage_server/core/port/out"
	"triage_server/core/service/classification"
	mail "triage_server/core/service/email"
	"triage_server/core/service/normalize"
	"triage_server/infra/database"
	"triage_server/internal/stream"
	"triage_server/pkg/cache"
	"triage_server/pkg/logger"
	"triage_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 10 * time.Second

// Dependencies holds every wired component. Postgres and Redis are
// optional; the members that need them stay nil when they are absent.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Adapters
	History     *persistence.HistoryAdapter
	Cache       *cache.RedisCache
	MemoryCache *cache.MemoryCache // used when Redis is absent
	LLM         *llm.Client
	Producer    *stream.Producer
	JobStore    *cacheadapter.JobStore

	// Services
	Classifier *classification.Classifier
	Triage     *mail.Service
	Latency    *metrics.LatencyRegistry
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("bootstrap: nil config")
	}
	deps := &Dependencies{
		Config:  cfg,
		Latency: metrics.NewLatencyRegistry(1000),
	}
	var cleanups []func()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if cfg.DatabaseURL != "" {
		connectPostgres(ctx, deps, &cleanups)
	} else {
		logger.Info("DATABASE_URL not set, history disabled")
	}

	if cfg.RedisURL != "" {
		connectRedis(ctx, deps, &cleanups)
	} else {
		logger.Info("REDIS_URL not set, cache and job queue disabled")
	}

	var resultCache out.ResultCache
	switch {
	case deps.Cache != nil:
		resultCache = deps.Cache
	case cfg.CacheTTL > 0:
		deps.MemoryCache = cache.NewMemoryCache(cache.DefaultMemoryItems)
		resultCache = deps.MemoryCache
	}
	deps.LLM, deps.Classifier = NewClassifier(cfg, resultCache)

	opts := mail.Options{
		Normalizer:     normalize.New(),
		Extractor:      extract.New(),
		Latency:        deps.Latency,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger.Default(),
	}
	if deps.History != nil {
		opts.History = deps.History
	}
	deps.Triage = mail.NewService(deps.Classifier, opts)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

// NewClassifier wires the remote provider, when configured, behind the
// heuristic facade. A non-nil resultCache caches remote classifications.
func NewClassifier(cfg *config.Config, resultCache out.ResultCache) (*llm.Client, *classification.Classifier) {
	var client *llm.Client
	var remote out.RemoteClassifier
	var replier out.RemoteReplyGenerator

	if cfg.LLMEnabled {
		client = llm.NewClient(llm.ClientConfig{
			APIKey:             cfg.OpenAIAPIKey,
			Model:              cfg.OpenAIModel,
			BaseURL:            cfg.OpenAIBaseURL,
			BreakerMaxFailures: cfg.LLMBreakerMaxFailures,
			BreakerTimeout:     cfg.LLMBreakerTimeout,
		})
	}
	if client != nil {
		remote, replier = client, client
		if resultCache != nil && cfg.CacheTTL > 0 {
			remote = llm.NewCachedClassifier(client, resultCache, client.Model(), cfg.CacheTTL)
		}
		logger.Info("Remote classifier enabled (model=%s)", client.Model())
	} else {
		logger.Warn("Remote classifier disabled, using heuristic only")
	}

	classifier := classification.NewClassifier(remote, replier, classification.Config{
		RemoteEnabled: cfg.RemoteConfigured(),
		Timeout:       cfg.LLMTimeout,
	}, logger.Default())

	return client, classifier
}

func connectPostgres(ctx context.Context, deps *Dependencies, cleanups *[]func()) {
	url := deps.Config.DatabaseURL

	pool, err := database.NewPostgres(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Postgres connection failed, history disabled")
		return
	}
	deps.DB = pool
	*cleanups = append(*cleanups, pool.Close)

	sqlDB, err := database.NewSQLX(ctx, url, database.DefaultPostgresConfig())
	if err != nil {
		logger.WithError(err).Warn("sqlx connection failed, history disabled")
		return
	}
	deps.SQLDB = sqlDB
	*cleanups = append(*cleanups, func() { _ = sqlDB.Close() })

	history := persistence.NewHistoryAdapter(sqlDB)
	if err := history.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Warn("History schema setup failed, history disabled")
		return
	}
	deps.History = history
	logger.Info("Postgres connected, history enabled")
}

func connectRedis(ctx context.Context, deps *Dependencies, cleanups *[]func()) {
	client, err := database.NewRedis(ctx, deps.Config.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Redis connection failed, cache and job queue disabled")
		return
	}
	deps.Redis = client
	*cleanups = append(*cleanups, func() { _ = client.Close() })

	deps.Cache = cache.NewRedisCache(client, cacheadapter.KeyPrefix)
	deps.JobStore = cacheadapter.NewJobStore(deps.Cache, deps.Config.JobResultTTL)

	deps.Producer = stream.NewProducer(stream.NewRedisStream(client, stream.GroupWorkers))
	if err := deps.Producer.EnsureGroup(ctx); err != nil {
		logger.WithError(err).Warn("Failed to create job stream group")
	}
	logger.Info("Redis connected, cache and job queue enabled")
}
