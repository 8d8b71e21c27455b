package classify

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/taxonomy"
	"github.com/fundlens-ai/fundlens/internal/textnorm"
)

func newClassifier(t *testing.T, scorer Scorer) *Classifier {
	t.Helper()
	return New(taxonomy.Default(), DefaultOptions(), scorer)
}

func escalationPhrase(text string) phrase.Phrase {
	return phrase.Phrase{
		Text:    text,
		Cleaned: textnorm.CleanPhrase(text, textnorm.DefaultStopwords()),
	}
}

func TestClassifyExactMatches(t *testing.T) {
	c := newClassifier(t, nil)
	e := phrase.New()

	res := c.Classify(context.Background(), e.Extract("Key risks: market risk and credit risk."))
	want := []string{"Market Risk", "Credit Risk"}
	if !reflect.DeepEqual(res.StandardRisks, want) {
		t.Fatalf("StandardRisks = %v, want %v", res.StandardRisks, want)
	}
	if len(res.OtherRisks) != 0 {
		t.Fatalf("unexpected OtherRisks: %v", res.OtherRisks)
	}
}

func TestClassifyFuzzyPlurals(t *testing.T) {
	c := newClassifier(t, nil)

	cases := []struct {
		text string
		want string
	}{
		{"interest rate risks apply to this fund", "Interest Rate Risk"},
		{"subject to emerging markets risks", "Emerging Market Risk"},
		{"exposure to perpetual bonds risk", "Perpetual Bond Risk"},
	}
	for _, tc := range cases {
		res := c.Classify(context.Background(), []phrase.Phrase{escalationPhrase(tc.text)})
		if len(res.StandardRisks) != 1 || res.StandardRisks[0] != tc.want {
			t.Errorf("Classify(%q) standard = %v, want [%s]", tc.text, res.StandardRisks, tc.want)
		}
	}
}

func TestClassifyUnmatchedGoesToOtherRisks(t *testing.T) {
	c := newClassifier(t, nil)
	p := escalationPhrase("exposure to niche market segments and innovative trading strategies")

	res := c.Classify(context.Background(), []phrase.Phrase{p})
	if len(res.StandardRisks) != 0 {
		t.Fatalf("unexpected standard risks: %v", res.StandardRisks)
	}
	if len(res.OtherRisks) != 1 || res.OtherRisks[0] != p.Cleaned {
		t.Fatalf("OtherRisks = %v, want [%s]", res.OtherRisks, p.Cleaned)
	}
}

func TestClassifyDeterministicWithoutSemanticTier(t *testing.T) {
	c := newClassifier(t, nil)
	e := phrase.New()
	text := "The fund faces liquidity risk, currency risks, leverage risk and " +
		"certain bespoke structuring hazards; risk of loss applies."

	first := c.Classify(context.Background(), e.Extract(text))
	for i := 0; i < 5; i++ {
		again := c.Classify(context.Background(), e.Extract(text))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestClassifyInvariants(t *testing.T) {
	c := newClassifier(t, nil)
	e := phrase.New()
	text := "Market risk. Market risk again. Liquidity risk. " +
		"Unusual bespoke exposure risk from frontier venues. " +
		"Unusual bespoke exposure risk from frontier venues."

	res := c.Classify(context.Background(), e.Extract(text))

	seen := map[string]bool{}
	for _, s := range res.StandardRisks {
		if seen[s] {
			t.Fatalf("duplicate standard risk %q in %v", s, res.StandardRisks)
		}
		seen[s] = true
	}
	seenOther := map[string]bool{}
	for _, o := range res.OtherRisks {
		if seenOther[o] {
			t.Fatalf("duplicate other risk %q in %v", o, res.OtherRisks)
		}
		seenOther[o] = true
		if seen[o] {
			t.Fatalf("entry %q present in both lists", o)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newClassifier(t, nil)
	if res := c.Classify(context.Background(), nil); !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if res := c.Classify(context.Background(), []phrase.Phrase{}); !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

// fakeScorer scores any pair whose second argument contains the marker
// highly, everything else low.
type fakeScorer struct {
	marker string
	err    error
}

func (f *fakeScorer) Similarity(_ context.Context, _, b string) (float32, error) {
	if f.err != nil {
		return 0, f.err
	}
	if strings.Contains(b, f.marker) {
		return 0.93, nil
	}
	return 0.12, nil
}

func TestClassifySemanticTier(t *testing.T) {
	scorer := &fakeScorer{marker: "price fluctuations"}
	c := newClassifier(t, scorer)
	p := escalationPhrase("sharp swings in unit price")

	res := c.Classify(context.Background(), []phrase.Phrase{p})
	if len(res.StandardRisks) != 1 || res.StandardRisks[0] != "Volatility Risk" {
		t.Fatalf("semantic tier: standard = %v, want [Volatility Risk]", res.StandardRisks)
	}

	// Without the capability the same phrase escalates instead.
	c = newClassifier(t, nil)
	if !c.Degraded() {
		t.Fatal("expected Degraded() without scorer")
	}
	res = c.Classify(context.Background(), []phrase.Phrase{p})
	if len(res.StandardRisks) != 0 || len(res.OtherRisks) != 1 {
		t.Fatalf("degraded classification = %+v", res)
	}
}

func TestClassifyNoiseFiltering(t *testing.T) {
	c := newClassifier(t, nil)
	phrases := []phrase.Phrase{
		escalationPhrase("what risk factors cause losses"),
		escalationPhrase("novel venue exposure from frontier markets"),
		escalationPhrase("exposure from frontier markets and novel venues"),
	}
	res := c.Classify(context.Background(), phrases)
	if len(res.OtherRisks) != 1 {
		t.Fatalf("expected noise + near-duplicate collapse to 1 entry, got %v", res.OtherRisks)
	}
}
