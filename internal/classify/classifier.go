// Package classify maps extracted risk phrases onto the canonical
// taxonomy using exact, fuzzy, and optional semantic matching.
package classify

import (
	"context"
	"log/slog"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/taxonomy"
	"github.com/fundlens-ai/fundlens/internal/textnorm"
)

// Scorer is the optional semantic-similarity capability. A nil Scorer
// disables the semantic tier; it never makes classification fail.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (float32, error)
}

// Result partitions phrases into taxonomy categories and unclassified
// escalation items. Both lists are deduplicated in first-seen order and
// never share an entry.
type Result struct {
	StandardRisks []string
	OtherRisks    []string
}

// Empty reports whether classification produced nothing.
func (r Result) Empty() bool {
	return len(r.StandardRisks) == 0 && len(r.OtherRisks) == 0
}

// Options are the tunable matching parameters. Fuzzy tolerance and the
// semantic threshold are deliberately configurable; they should be tuned
// against a labeled phrase corpus rather than trusted blindly.
type Options struct {
	// FuzzyPartialCutoff is the 0-100 partial-ratio score a keyword must
	// reach inside a phrase for a tier-2 match.
	FuzzyPartialCutoff int
	// WordOverlap is the fraction of a keyword's words that must appear
	// in the phrase for an order-independent tier-2 match.
	WordOverlap float64
	// SemanticThreshold is the minimum cosine similarity for a tier-3
	// match.
	SemanticThreshold float32
	// MinPhraseLen drops degenerate phrases before matching.
	MinPhraseLen int
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		FuzzyPartialCutoff: 90,
		WordOverlap:        0.8,
		SemanticThreshold:  0.7,
		MinPhraseLen:       6,
	}
}

// Classifier matches phrases against one immutable taxonomy. Safe for
// concurrent use when the Scorer is.
type Classifier struct {
	tax      *taxonomy.Taxonomy
	opts     Options
	scorer   Scorer
	stoplist map[string]struct{}
}

// New builds a Classifier. scorer may be nil.
func New(tax *taxonomy.Taxonomy, opts Options, scorer Scorer) *Classifier {
	if opts.FuzzyPartialCutoff <= 0 {
		opts.FuzzyPartialCutoff = DefaultOptions().FuzzyPartialCutoff
	}
	if opts.WordOverlap <= 0 {
		opts.WordOverlap = DefaultOptions().WordOverlap
	}
	if opts.SemanticThreshold <= 0 {
		opts.SemanticThreshold = DefaultOptions().SemanticThreshold
	}
	if opts.MinPhraseLen <= 0 {
		opts.MinPhraseLen = DefaultOptions().MinPhraseLen
	}
	return &Classifier{
		tax:      tax,
		opts:     opts,
		scorer:   scorer,
		stoplist: textnorm.DefaultStopwords(),
	}
}

// Degraded reports whether the semantic tier is unavailable. This is
// informational, not an error.
func (c *Classifier) Degraded() bool { return c.scorer == nil }

// Classify runs every phrase through the matching tiers and returns the
// partitioned, deduplicated result. Empty input yields an empty Result.
func (c *Classifier) Classify(ctx context.Context, phrases []phrase.Phrase) Result {
	var res Result
	if len(phrases) == 0 {
		return res
	}

	seenStandard := make(map[string]bool)
	var unmatched []phrase.Phrase

	for _, p := range dedupePhrases(phrases, c.opts.MinPhraseLen) {
		if name, ok := c.matchExact(p.Text); ok {
			if !seenStandard[name] {
				seenStandard[name] = true
				res.StandardRisks = append(res.StandardRisks, name)
			}
			continue
		}
		if name, ok := c.matchFuzzy(p.Text); ok {
			if !seenStandard[name] {
				seenStandard[name] = true
				res.StandardRisks = append(res.StandardRisks, name)
			}
			continue
		}
		if name, ok := c.matchSemantic(ctx, p.Text); ok {
			if !seenStandard[name] {
				seenStandard[name] = true
				res.StandardRisks = append(res.StandardRisks, name)
			}
			continue
		}
		unmatched = append(unmatched, p)
	}

	res.OtherRisks = c.reduceOtherRisks(unmatched)
	return res
}

// matchExact looks for a taxonomy keyword as a whole-word substring of
// the phrase. The longest matching keyword wins; ties break
// lexicographically via the sorted keyword walk.
func (c *Classifier) matchExact(text string) (string, bool) {
	text = strings.ToLower(text)
	var best string
	for _, kw := range c.tax.Keywords() {
		if len(kw) > len(best) && containsWords(text, kw) {
			best = kw
		}
	}
	if best == "" {
		return "", false
	}
	name, _ := c.tax.Lookup(best)
	return name, true
}

// matchFuzzy tolerates pluralization and minor wording variance:
// plural-folded containment first, then word overlap, then a bounded
// partial-ratio pass.
func (c *Classifier) matchFuzzy(text string) (string, bool) {
	folded := textnorm.FoldPlurals(strings.ToLower(text))

	var best string
	for _, kw := range c.tax.Keywords() {
		if len(kw) > len(best) && containsWords(folded, textnorm.FoldPlurals(kw)) {
			best = kw
		}
	}
	if best != "" {
		name, _ := c.tax.Lookup(best)
		return name, true
	}

	phraseWords := wordSet(folded)
	for _, kw := range c.tax.Keywords() {
		kwWords := strings.Fields(textnorm.FoldPlurals(kw))
		if len(kwWords) < 2 {
			continue
		}
		overlap := 0
		for _, w := range kwWords {
			if phraseWords[w] {
				overlap++
			}
		}
		if overlap >= 2 && float64(overlap) >= float64(len(kwWords))*c.opts.WordOverlap {
			name, _ := c.tax.Lookup(kw)
			return name, true
		}
	}

	bestScore := 0
	best = ""
	for _, kw := range c.tax.Keywords() {
		if strings.Count(kw, " ") == 0 {
			continue // single words are too easy to hit partially
		}
		score := fuzzy.PartialRatio(textnorm.FoldPlurals(kw), folded)
		if score >= c.opts.FuzzyPartialCutoff && (score > bestScore || (score == bestScore && len(kw) > len(best))) {
			bestScore = score
			best = kw
		}
	}
	if best == "" {
		return "", false
	}
	name, _ := c.tax.Lookup(best)
	return name, true
}

// matchSemantic embeds the phrase against each category description and
// accepts the best category clearing the configured threshold. Scorer
// failures only disable the tier for this phrase.
func (c *Classifier) matchSemantic(ctx context.Context, text string) (string, bool) {
	if c.scorer == nil {
		return "", false
	}
	var (
		bestName  string
		bestScore float32
	)
	for _, cat := range c.tax.Categories() {
		score, err := c.scorer.Similarity(ctx, text, c.tax.Description(cat.Name))
		if err != nil {
			slog.Debug("semantic scoring failed", "category", cat.Name, "err", err)
			return "", false
		}
		if score > bestScore {
			bestScore = score
			bestName = cat.Name
		}
	}
	if bestScore >= c.opts.SemanticThreshold {
		return bestName, true
	}
	return "", false
}

// containsWords reports whether needle occurs in haystack on word
// boundaries.
func containsWords(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		startOK := start == 0 || !isWordByte(haystack[start-1])
		endOK := end == len(haystack) || !isWordByte(haystack[end])
		if startOK && endOK {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func wordSet(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		out[w] = true
	}
	return out
}
