package middleware

import (
	"time"

	"triage_server/pkg/apperr"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ClassifyLimiter caps classification requests per client IP per minute.
func ClassifyLimiter(perMinute int) fiber.Handler {
	if perMinute < 1 {
		perMinute = 1
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			appErr := apperr.New(apperr.CodeRateLimited, "rate limit exceeded", fiber.StatusTooManyRequests).
				WithDetail("limit_per_minute", perMinute)
			return response.Error(c, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
		},
	})
}
