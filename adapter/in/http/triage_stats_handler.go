package http

import (
	"context"
	"database/sql"
	"time"

	"triage_server/core/port/out"
	"triage_server/infra/database"
	"triage_server/pkg/cache"
	"triage_server/pkg/metrics"
	"triage_server/pkg/resilience"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// QueueDepth reports how many jobs are waiting.
type QueueDepth interface {
	Depth(ctx context.Context) (int64, error)
}

// StatsSources lists what /api/v1/stats reports on. Nil members are skipped.
type StatsSources struct {
	Latency       *metrics.LatencyRegistry
	Breaker       *resilience.CircuitBreaker
	RemoteEnabled bool
	Queue         QueueDepth
	History       out.HistoryRepository
	SQL           *sql.DB
	Redis         *redis.Client
	MemoryCache   *cache.MemoryCache
}

type StatsHandler struct {
	src StatsSources
}

func NewStatsHandler(src StatsSources) *StatsHandler {
	return &StatsHandler{src: src}
}

func (h *StatsHandler) Register(api fiber.Router) {
	api.Get("/stats", h.Stats)
}

func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	stats := fiber.Map{
		"remote_enabled": h.src.RemoteEnabled,
	}

	if h.src.Latency != nil {
		stats["latency"] = h.src.Latency.Snapshot()
	}
	if h.src.Breaker != nil {
		stats["circuit_breaker"] = h.src.Breaker.Stats()
	}
	if h.src.Queue != nil {
		if depth, err := h.src.Queue.Depth(ctx); err == nil {
			stats["queue_pending"] = depth
		}
	}
	if h.src.History != nil {
		if counts, err := h.src.History.CountByCategory(ctx); err == nil {
			stats["history"] = counts
		}
	}
	if h.src.SQL != nil {
		stats["db_pool"] = metrics.GetDBPoolStats(h.src.SQL).ToMap()
	}
	if h.src.Redis != nil {
		stats["redis_pool"] = database.GetRedisStats(h.src.Redis)
	}
	if h.src.MemoryCache != nil {
		stats["memory_cache"] = h.src.MemoryCache.Stats()
	}

	return response.OK(c, stats)
}
