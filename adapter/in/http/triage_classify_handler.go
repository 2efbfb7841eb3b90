package http

import (
	"triage_server/core/port/in"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClassifyHandler serves synchronous classification.
type ClassifyHandler struct {
	triage    in.TriageService
	maxUpload int64
}

func NewClassifyHandler(triage in.TriageService, maxUpload int64) *ClassifyHandler {
	return &ClassifyHandler{triage: triage, maxUpload: maxUpload}
}

// Register mounts the flat routes on app and the enveloped ones on api.
// Handlers in guard run before every classification route.
func (h *ClassifyHandler) Register(app *fiber.App, api fiber.Router, guard ...fiber.Handler) {
	app.Post("/classify", chain(guard, h.Classify)...)
	app.Post("/upload", chain(guard, h.Upload)...)

	api.Post("/classify", chain(guard, h.ClassifyV1)...)
	api.Post("/upload", chain(guard, h.UploadV1)...)
}

func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	req, err := parseAnalyzeRequest(c)
	if err != nil {
		return err
	}
	analysis, err := h.triage.Analyze(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(toClassifyResponse(analysis))
}

func (h *ClassifyHandler) Upload(c *fiber.Ctx) error {
	req, err := parseUploadRequest(c, h.maxUpload)
	if err != nil {
		return err
	}
	analysis, err := h.triage.AnalyzeUpload(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(toClassifyResponse(analysis))
}

func (h *ClassifyHandler) ClassifyV1(c *fiber.Ctx) error {
	req, err := parseAnalyzeRequest(c)
	if err != nil {
		return err
	}
	analysis, err := h.triage.Analyze(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.OK(c, analysis)
}

func (h *ClassifyHandler) UploadV1(c *fiber.Ctx) error {
	req, err := parseUploadRequest(c, h.maxUpload)
	if err != nil {
		return err
	}
	analysis, err := h.triage.AnalyzeUpload(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.OK(c, analysis)
}
