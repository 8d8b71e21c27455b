// Package textnorm canonicalizes raw disclosure text so the phrase
// extractor and classifier can match against it reliably.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reDisallowed  = regexp.MustCompile(`[^a-z0-9 .,;:%&/()'-]`)
	reParenthetic = regexp.MustCompile(`\([^)]*\)`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, replaces newlines with spaces, removes
// characters outside the permitted set, and collapses whitespace runs.
// Pure and idempotent; empty input yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	out := strings.ToLower(text)
	out = reWhitespace.ReplaceAllString(out, " ")
	out = reDisallowed.ReplaceAllString(out, "")
	out = reWhitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// pluralFolds covers the handful of plural forms that show up in risk
// disclosure keywords. Longer keys are applied first so "securities" does
// not get caught by a shorter replacement.
var pluralFolds = strings.NewReplacer(
	"securities", "security",
	"currencies", "currency",
	"markets", "market",
	"bonds", "bond",
	"risks", "risk",
	"rates", "rate",
)

// FoldPlurals maps common plural forms in financial prose onto their
// singular form. Used by the fuzzy matching tier.
func FoldPlurals(text string) string {
	return pluralFolds.Replace(text)
}

// DefaultStopwords returns the filler words stripped from phrase edges
// before a phrase is surfaced for review.
func DefaultStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "to", "of", "are", "in", "for", "with", "by", "from",
		"an", "a", "or", "but", "as", "at", "be", "been", "have", "has",
		"had", "do", "does", "did", "will", "would", "could", "should",
		"may", "might", "must", "can", "is", "was", "were", "this", "that",
		"these", "those", "on", "up", "down", "over", "under", "through",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// CleanPhrase drops parenthesised asides and stopwords, title-cases what
// remains, and makes sure the phrase reads as a named risk. Returns ""
// when nothing meaningful is left.
func CleanPhrase(phrase string, stopwords map[string]struct{}) string {
	if phrase == "" {
		return ""
	}
	phrase = reParenthetic.ReplaceAllString(phrase, "")

	var kept []string
	for _, w := range strings.Fields(phrase) {
		if _, skip := stopwords[strings.ToLower(w)]; skip {
			continue
		}
		kept = append(kept, titleWord(w))
	}
	if len(kept) == 0 {
		return ""
	}

	cleaned := strings.Join(kept, " ")
	if !strings.HasSuffix(strings.ToLower(cleaned), "risk") {
		cleaned += " Risk"
	}
	return cleaned
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}
