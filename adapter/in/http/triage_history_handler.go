package http

import (
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryHandler lists persisted classifications.
type HistoryHandler struct {
	repo out.HistoryRepository
}

func NewHistoryHandler(repo out.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

func (h *HistoryHandler) Register(api fiber.Router) {
	api.Get("/history", h.List)
}

// List returns the newest entries, at most maxHistoryLimit.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	if h.repo == nil {
		return apperr.Unavailable("history")
	}

	limit := c.QueryInt("limit", defaultHistoryLimit)
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	entries, err := h.repo.Recent(c.UserContext(), limit)
	if err != nil {
		return apperr.DatabaseError("list history", err)
	}

	return response.OKWithMeta(c, entries, &response.Meta{Total: len(entries), Limit: limit})
}
