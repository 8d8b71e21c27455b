// Package docext turns fetched risk-disclosure documents into plain text
// via an ordered cascade of extraction backends.
package docext

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// ErrUnavailable means no configured backend produced usable text. The
// aggregator treats it as a data-completeness gap, not a fatal error.
var ErrUnavailable = errors.New("document text extraction unavailable")

// Backend is one extraction strategy. Extract returns the document's
// plain text or an error; empty text counts as failure.
type Backend interface {
	Name() string
	Extract(data []byte) (string, error)
}

// Cascade tries backends in order and short-circuits on the first
// acceptable result.
type Cascade struct {
	backends []Backend
	minLen   int
	// preferRichest runs every backend and keeps the text with the most
	// trigger-word occurrences instead of stopping at the first success.
	preferRichest bool
	trigger       string
}

// CascadeOption adjusts a Cascade.
type CascadeOption func(*Cascade)

// WithMinLength sets the minimum rune count for text to be accepted.
func WithMinLength(n int) CascadeOption {
	return func(c *Cascade) {
		if n > 0 {
			c.minLen = n
		}
	}
}

// WithPreferRichest makes the cascade pick the backend whose output
// mentions the trigger word most often, rather than the first success.
func WithPreferRichest(trigger string) CascadeOption {
	return func(c *Cascade) {
		c.preferRichest = true
		if trigger != "" {
			c.trigger = strings.ToLower(trigger)
		}
	}
}

// NewCascade builds a cascade over the given backends. At least one
// backend is required; enforcing that at startup is config.Validate's job,
// but an empty cascade also fails every call with ErrUnavailable.
func NewCascade(backends []Backend, opts ...CascadeOption) *Cascade {
	c := &Cascade{
		backends: backends,
		minLen:   20,
		trigger:  "risk",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBackends returns the standard extraction order: PDF, then HTML
// readability, then a plain-text sniff.
func DefaultBackends() []Backend {
	return []Backend{PDF{}, HTML{}, Plain{}}
}

// ForNames resolves configured backend names into instances. Unknown
// names are an error so misconfiguration surfaces at startup.
func ForNames(names []string) ([]Backend, error) {
	out := make([]Backend, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "pdf":
			out = append(out, PDF{})
		case "html":
			out = append(out, HTML{})
		case "plain", "text":
			out = append(out, Plain{})
		default:
			return nil, fmt.Errorf("unknown extraction backend %q", n)
		}
	}
	return out, nil
}

// ExtractText runs the cascade over document bytes. It returns the first
// acceptable text (or the richest, see WithPreferRichest), or
// ErrUnavailable when every backend fails.
func (c *Cascade) ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrUnavailable
	}

	var best string
	bestCount := -1
	for _, b := range c.backends {
		text, err := b.Extract(data)
		if err != nil {
			slog.Debug("extraction backend failed", "backend", b.Name(), "err", err)
			continue
		}
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) < c.minLen {
			continue
		}
		if !c.preferRichest {
			return text, nil
		}
		count := strings.Count(strings.ToLower(text), c.trigger)
		if count > bestCount {
			best = text
			bestCount = count
		}
	}
	if bestCount >= 0 {
		return best, nil
	}
	return "", ErrUnavailable
}
