// Package normalize prepares free text for the keyword classifier.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
)

// Normalizer lowercases, tokenizes and drops stopwords and one-character
// tokens. The zero value is not usable; call New.
type Normalizer struct {
	stopwords map[string]struct{}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithExtraStopwords adds words to the stopword set.
func WithExtraStopwords(words ...string) Option {
	return func(n *Normalizer) {
		for _, w := range words {
			n.stopwords[norm.NFC.String(strings.ToLower(w))] = struct{}{}
		}
	}
}

// WithoutStopwords disables stopword removal.
func WithoutStopwords() Option {
	return func(n *Normalizer) {
		n.stopwords = map[string]struct{}{}
	}
}

// New creates a Normalizer with the Portuguese stopword list.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{stopwords: make(map[string]struct{}, len(portugueseStopwords))}
	for _, w := range portugueseStopwords {
		n.stopwords[w] = struct{}{}
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the space-joined content tokens of raw.
func (n *Normalizer) Normalize(raw string) string {
	text := norm.NFC.String(raw)
	text = strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")))

	tokens := n.Tokens(text)
	return strings.Join(tokens, " ")
}

// Tokens splits already lowercased text and filters it.
func (n *Normalizer) Tokens(text string) []string {
	raw := tokenRe.FindAllString(text, -1)
	tokens := raw[:0]
	for _, t := range raw {
		if len([]rune(t)) <= 1 {
			continue
		}
		if _, stop := n.stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// IsStopword reports whether w is in the stopword set.
func (n *Normalizer) IsStopword(w string) bool {
	_, ok := n.stopwords[w]
	return ok
}
