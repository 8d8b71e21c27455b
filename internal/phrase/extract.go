// Package phrase scans normalized disclosure text for risk-bearing
// context windows around a trigger keyword.
package phrase

import (
	"regexp"
	"strings"

	"github.com/fundlens-ai/fundlens/internal/textnorm"
)

// DefaultWindow is the number of words kept either side of the trigger.
const DefaultWindow = 3

var reWord = regexp.MustCompile(`\w+`)

// Phrase is one extracted context window. Text is the raw window,
// Cleaned the review-ready form, Pos the trigger's word index in the
// source text.
type Phrase struct {
	Text    string
	Cleaned string
	Pos     int
}

// Extractor produces phrases from raw document text. The zero value is
// not usable; call New.
type Extractor struct {
	trigger   string
	window    int
	stopwords map[string]struct{}
}

// Option adjusts an Extractor.
type Option func(*Extractor)

// WithTrigger replaces the default "risk" trigger prefix.
func WithTrigger(trigger string) Option {
	return func(e *Extractor) { e.trigger = strings.ToLower(trigger) }
}

// WithWindow sets the number of context words either side of the trigger.
func WithWindow(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithStopwords replaces the default filler-word list.
func WithStopwords(stopwords map[string]struct{}) Option {
	return func(e *Extractor) { e.stopwords = stopwords }
}

// New returns an Extractor with the default trigger, window, and stoplist.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		trigger:   "risk",
		window:    DefaultWindow,
		stopwords: textnorm.DefaultStopwords(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract normalizes text and returns every trigger window in source
// order. Adjacent triggers yield overlapping windows; deduplication is the
// classifier's job. Calling Extract again restarts the sequence.
func (e *Extractor) Extract(text string) []Phrase {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}

	words := reWord.FindAllString(normalized, -1)
	var out []Phrase
	for i, w := range words {
		// Prefix match so "risk" also catches "risks".
		if !strings.HasPrefix(w, e.trigger) {
			continue
		}
		start := i - e.window
		if start < 0 {
			start = 0
		}
		end := i + e.window + 1
		if end > len(words) {
			end = len(words)
		}
		raw := strings.Join(words[start:end], " ")
		cleaned := textnorm.CleanPhrase(raw, e.stopwords)
		if cleaned == "" {
			continue
		}
		out = append(out, Phrase{Text: raw, Cleaned: cleaned, Pos: i})
	}
	return out
}
