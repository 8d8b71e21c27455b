package classify

import (
	"strings"

	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/textnorm"
)

// noisePatterns are fragments that mark a phrase as an extraction
// artifact rather than a disclosed risk.
var noisePatterns = []string{
	"what risk", "investment risk", "factors cause", "than bonds",
	"their value", "generally fall", "generally greater", "behaviour",
	"unexpected behaviour", "factors may cause", "lose some all",
}

// dedupePhrases removes repeated windows before classification, keeping
// first-seen order. Degenerate windows shorter than minLen are dropped.
func dedupePhrases(phrases []phrase.Phrase, minLen int) []phrase.Phrase {
	seen := make(map[string]bool, len(phrases))
	out := make([]phrase.Phrase, 0, len(phrases))
	for _, p := range phrases {
		key := textnorm.Normalize(p.Text)
		if len(key) <= minLen-1 || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// reduceOtherRisks turns unmatched phrases into the escalation list:
// noise filtered out, near-duplicates collapsed, cleaned text kept in
// first-seen order.
func (c *Classifier) reduceOtherRisks(unmatched []phrase.Phrase) []string {
	var kept []phrase.Phrase
	seen := make(map[string]bool)
	for _, p := range unmatched {
		if p.Cleaned == "" || seen[p.Cleaned] {
			continue
		}
		if c.isNoise(p.Text) {
			continue
		}
		similar := false
		for _, existing := range kept {
			if c.similarPhrases(p.Text, existing.Text) {
				similar = true
				break
			}
		}
		if similar {
			continue
		}
		seen[p.Cleaned] = true
		kept = append(kept, p)
	}

	out := make([]string, 0, len(kept))
	for _, p := range kept {
		out = append(out, p.Cleaned)
	}
	return out
}

// isNoise flags likely extraction artifacts: known noise fragments,
// one-word phrases, and phrases dominated by filler words.
func (c *Classifier) isNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range noisePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	words := strings.Fields(lower)
	if len(words) < 2 {
		return true
	}
	filler := 0
	for _, w := range words {
		if _, ok := c.stoplist[w]; ok {
			filler++
		}
	}
	return float64(filler)/float64(len(words)) > 0.6
}

// similarPhrases reports whether two phrases share most of their
// meaningful words (70% of the shorter set).
func (c *Classifier) similarPhrases(a, b string) bool {
	wa := meaningfulWords(a, c.stoplist)
	wb := meaningfulWords(b, c.stoplist)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}
	overlap := 0
	for w := range wa {
		if wb[w] {
			overlap++
		}
	}
	min := len(wa)
	if len(wb) < min {
		min = len(wb)
	}
	return float64(overlap)/float64(min) > 0.7
}

func meaningfulWords(text string, stoplist map[string]struct{}) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(textnorm.Normalize(text)) {
		if len(w) <= 2 {
			continue
		}
		if _, ok := stoplist[w]; ok {
			continue
		}
		out[w] = true
	}
	return out
}
