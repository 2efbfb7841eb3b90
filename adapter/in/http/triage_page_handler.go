package http

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

const fallbackPage = "<h1>API Online</h1><p>Envie POST para /classify ou /upload</p>"

// PageHandler serves the browser UI from a static directory.
type PageHandler struct {
	dir string
}

func NewPageHandler(dir string) *PageHandler {
	return &PageHandler{dir: dir}
}

func (h *PageHandler) Register(app *fiber.App) {
	app.Get("/", h.Index)
	if h.dirExists() {
		app.Static("/static", h.dir)
	}
}

// Index returns index.html when present, otherwise a short status page.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	if h.dir != "" {
		index := filepath.Join(h.dir, "index.html")
		if info, err := os.Stat(index); err == nil && !info.IsDir() {
			return c.SendFile(index)
		}
	}
	c.Type("html", "utf-8")
	return c.SendString(fallbackPage)
}

func (h *PageHandler) dirExists() bool {
	if h.dir == "" {
		return false
	}
	info, err := os.Stat(h.dir)
	return err == nil && info.IsDir()
}
