package classification

import (
	"math"
	"strconv"
	"strings"

	"triage_server/core/domain"
	"triage_server/core/port/out"
)

const (
	labelCategory   = "CATEGORIA:"
	labelConfidence = "CONFIANÇA:"

	defaultRemoteConfidence    = 0.5
	unparsableRemoteConfidence = 0.8
)

// ParseClassificationReply extracts category and confidence from a remote
// reply. Labels are matched case-insensitively at the start of trimmed lines.
// A missing field takes its default; a reply with neither label is malformed.
func ParseClassificationReply(reply string) (domain.Category, float64, error) {
	category := domain.CategoryProdutivo
	confidence := defaultRemoteConfidence
	found := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := cutLabel(line, labelCategory); ok {
			found = true
			category = domain.ParseCategory(value)
			continue
		}
		if value, ok := cutLabel(line, labelConfidence); ok {
			found = true
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				confidence = unparsableRemoteConfidence
				continue
			}
			confidence = clamp01(f)
		}
	}

	if !found {
		return category, confidence, out.NewProviderError("classify", out.ErrProviderResponseMalformed, nil)
	}
	return category, confidence, nil
}

func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return unparsableRemoteConfidence
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
