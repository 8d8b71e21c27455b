// Package simscore scores how well a fetched fund name matches the name
// expected by the caller. Used to flag funds whose feed record likely
// belongs to a different share class or product.
package simscore

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scores holds the individual similarity measures, each on a 0-100
// scale, plus their average.
type Scores struct {
	Simple    float64
	Partial   float64
	TokenSort float64
	Jaccard   float64
	Average   float64
}

// Score compares two fund names. Either side blank scores zero across
// the board.
func Score(a, b string) Scores {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return Scores{}
	}
	s := Scores{
		Simple:    float64(fuzzy.Ratio(a, b)),
		Partial:   float64(fuzzy.PartialRatio(a, b)),
		TokenSort: float64(fuzzy.TokenSortRatio(a, b)),
		Jaccard:   jaccard(a, b),
	}
	s.Average = (s.Simple + s.Partial + s.TokenSort + s.Jaccard) / 4
	return s
}

// jaccard is word-set overlap on a 0-100 scale.
func jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	union := make(map[string]bool, len(wordsA)+len(wordsB))
	intersection := 0
	for w := range wordsA {
		union[w] = true
		if wordsB[w] {
			intersection++
		}
	}
	for w := range wordsB {
		union[w] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union)) * 100
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// Quality bands an average score into a reviewer-facing label.
func Quality(avg float64) string {
	switch {
	case avg >= 90:
		return "Excellent"
	case avg >= 75:
		return "Good"
	case avg >= 60:
		return "Fair"
	case avg >= 40:
		return "Poor"
	default:
		return "Very Poor"
	}
}
