// Package extract turns uploaded email files into plain text.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"triage_server/core/port/out"

	"github.com/ledongthuc/pdf"
)

// Extractor reads PDF pages when the upload looks like a PDF and otherwise
// decodes the bytes as UTF-8, dropping invalid sequences.
type Extractor struct{}

var _ out.TextExtractor = Extractor{}

func New() Extractor {
	return Extractor{}
}

func (Extractor) Extract(filename, contentType string, data []byte) (string, error) {
	if isPDF(filename, contentType) {
		if text, err := pdfText(data); err == nil && text != "" {
			return text, nil
		}
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func isPDF(filename, contentType string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf") ||
		strings.Contains(strings.ToLower(contentType), "pdf")
}

// pdfText joins the plain text of every page with newlines.
func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
