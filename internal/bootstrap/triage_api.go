package bootstrap

import (
	"strings"

	"triage_server/adapter/in/http"
	"triage_server/core/port/out"
	"triage_server/infra/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// bodyLimitSlack leaves room for multipart framing above the upload cap.
const bodyLimitSlack = 1 << 20

// NewAPI builds the fiber app over deps.
func NewAPI(deps *Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		AppName:               "triage",

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,
		JSONEncoder:     json.Marshal,
		JSONDecoder:     json.Unmarshal,
		BodyLimit:       int(cfg.MaxUploadBytes) + bodyLimitSlack,
		ServerHeader:    "",
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	// Credentials are only allowed with an explicit origin list.
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := allowOrigins != "" && allowOrigins != "*"
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	http.NewHealthHandler(deps.DB, deps.Redis).Register(app)
	http.NewPageHandler(cfg.StaticDir).Register(app)

	limiter := middleware.ClassifyLimiter(cfg.RateLimitPerMin)
	api := app.Group("/api/v1")

	http.NewClassifyHandler(deps.Triage, cfg.MaxUploadBytes).Register(app, api, limiter)

	var queue out.JobQueue
	var store out.JobStore
	if deps.Producer != nil {
		queue = deps.Producer
	}
	if deps.JobStore != nil {
		store = deps.JobStore
	}
	http.NewJobHandler(queue, store).Register(api, limiter)

	var history out.HistoryRepository
	if deps.History != nil {
		history = deps.History
	}
	http.NewHistoryHandler(history).Register(api)

	stats := http.StatsSources{
		Latency:       deps.Latency,
		RemoteEnabled: deps.Classifier.RemoteActive(),
		History:       history,
		Redis:         deps.Redis,
		MemoryCache:   deps.MemoryCache,
	}
	if deps.LLM != nil {
		stats.Breaker = deps.LLM.Breaker()
	}
	if deps.Producer != nil {
		stats.Queue = deps.Producer
	}
	if deps.SQLDB != nil {
		stats.SQL = deps.SQLDB.DB
	}
	http.NewStatsHandler(stats).Register(api)

	return app
}
