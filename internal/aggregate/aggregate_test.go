package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fundlens-ai/fundlens/internal/classify"
	"github.com/fundlens-ai/fundlens/internal/docext"
	"github.com/fundlens-ai/fundlens/internal/fetch"
	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/source"
	"github.com/fundlens-ai/fundlens/internal/taxonomy"
)

const (
	isinFull   = "LU0048578792"
	isinBroken = "LU0011111111"
	isinThird  = "IE00B4468526"
)

func newTestAggregator(t *testing.T, reg *fakeRegulatory, mkt *fakeMarket, docs *fakeDocuments) *Aggregator {
	t.Helper()
	return New(Options{
		Regulatory: reg,
		Market:     mkt,
		Documents:  docs,
		Cascade:    docext.NewCascade([]docext.Backend{docext.Plain{}}),
		Extractor:  phrase.New(),
		Classifier: classify.New(taxonomy.Default(), classify.DefaultOptions(), nil),
		Retry:      fetch.Retry{MaxAttempts: 2, Backoff: time.Millisecond},
		Logger:     slog.New(slog.DiscardHandler),
	})
}

func populatedFakes() (*fakeRegulatory, *fakeMarket, *fakeDocuments) {
	reg := &fakeRegulatory{
		records: map[string]source.RegulatoryRecord{
			isinFull: {
				FundHouse:    "Alpha Asset Management",
				FundName:     "Alpha Global Equity Fund A Acc",
				AssetClass:   "Equity Fund",
				RiskBand:     "High",
				FactsheetURL: "https://factsheets.test/" + isinFull + ".pdf",
			},
			isinThird: {
				FundHouse:  "Gamma Investments",
				FundName:   "Gamma Asia Bond Fund",
				AssetClass: "Fixed Income Fund",
				RiskBand:   "Low to Medium",
			},
		},
		links: map[string]string{
			isinFull:  "https://docs.test/full.txt",
			isinThird: "https://docs.test/third.txt",
		},
		fail: map[string]bool{},
	}
	mkt := &fakeMarket{
		records: map[string]source.MarketRecord{
			isinFull: {
				Geographic:    "Global",
				Objective:     "Long-term capital growth.",
				LaunchDate:    "14 Feb 2014",
				OngoingCharge: "1.04%",
				Category:      "Global Large-Cap Blend Equity",
			},
			isinThird: {
				Geographic:    "Asia",
				Objective:     "Income from Asian bonds.",
				LaunchDate:    "03 Mar 2010",
				OngoingCharge: "0.75%",
				Category:      "Asia Bond",
			},
		},
		fail: map[string]bool{},
	}
	docs := &fakeDocuments{
		docs: map[string][]byte{
			"https://docs.test/full.txt":  []byte("Key risks: market risk and credit risk."),
			"https://docs.test/third.txt": []byte("The fund is subject to interest rate risk at all times."),
		},
	}
	return reg, mkt, docs
}

func TestFetchFundFullyPopulated(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	agg := newTestAggregator(t, reg, mkt, docs)

	rec := agg.FetchFund(context.Background(), isinFull)

	if rec.FundHouse != "Alpha Asset Management" || rec.FundName != "Alpha Global Equity Fund A Acc" {
		t.Fatalf("regulatory fields wrong: %+v", rec)
	}
	if rec.ApprovalStatus != "Recognised" {
		t.Fatalf("ApprovalStatus = %q", rec.ApprovalStatus)
	}
	if rec.Sector != "Equity Fund - Global Large-Cap Blend Equity" {
		t.Fatalf("Sector = %q", rec.Sector)
	}
	if rec.AnnualFee != "1.04%" || rec.LaunchDate != "14 Feb 2014" {
		t.Fatalf("market fields wrong: %+v", rec)
	}
	if rec.DisclosureURL != "https://docs.test/full.txt" {
		t.Fatalf("DisclosureURL = %q", rec.DisclosureURL)
	}
	want := []string{"Market Risk", "Credit Risk"}
	if !reflect.DeepEqual(rec.StandardRisks, want) {
		t.Fatalf("StandardRisks = %v, want %v", rec.StandardRisks, want)
	}
	if len(rec.OtherRisks) != 0 {
		t.Fatalf("OtherRisks = %v, want none", rec.OtherRisks)
	}
	for _, field := range TrackedFields {
		if rec.Missing[field] {
			t.Errorf("field %s flagged missing on fully populated record", field)
		}
	}
}

func TestFetchBatchResilience(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	reg.fail[isinBroken] = true
	mkt.fail[isinBroken] = true
	agg := newTestAggregator(t, reg, mkt, docs)

	res, err := agg.FetchBatch(context.Background(), []Entry{
		{ISIN: isinFull}, {ISIN: isinBroken}, {ISIN: isinThird},
	})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(res.Records))
	}
	if res.Records[0].ISIN != isinFull || res.Records[1].ISIN != isinBroken || res.Records[2].ISIN != isinThird {
		t.Fatal("input order not preserved")
	}

	broken := res.Records[1]
	// Offline-derivable fields survive a total fetch failure.
	if broken.ApprovalStatus != "Recognised" {
		t.Fatalf("broken ApprovalStatus = %q", broken.ApprovalStatus)
	}
	if broken.FactsheetURL == "" {
		t.Fatal("factsheet URL should be derivable offline")
	}
	for _, field := range []string{
		FieldFundHouse, FieldFundName, FieldAssetClass, FieldGeographic,
		FieldSector, FieldLaunchDate, FieldAnnualFee, FieldDisclosureURL,
		FieldObjective, FieldStandardRisks, FieldRiskBand,
	} {
		if !broken.Missing[field] {
			t.Errorf("broken record: field %s should be flagged missing", field)
		}
	}

	if res.Records[2].Missing[FieldFundName] {
		t.Fatal("third record should be populated despite the middle failure")
	}
	if got := res.Records[2].StandardRisks; len(got) != 1 || got[0] != "Interest Rate Risk" {
		t.Fatalf("third StandardRisks = %v", got)
	}
}

func TestFetchFundNoDisclosureLink(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	reg.links[isinFull] = ""
	agg := newTestAggregator(t, reg, mkt, docs)

	rec := agg.FetchFund(context.Background(), isinFull)
	if rec.DisclosureURL != "" {
		t.Fatalf("DisclosureURL = %q, want blank", rec.DisclosureURL)
	}
	if !rec.Missing[FieldDisclosureURL] || !rec.Missing[FieldStandardRisks] {
		t.Fatalf("risk fields should be flagged missing: %+v", rec.Missing)
	}
	if !rec.Missing[FieldStandardRisks] || len(rec.OtherRisks) != 0 {
		t.Fatalf("no classification expected without a document: %+v", rec)
	}
}

func TestFetchFundEscalation(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	docs.docs["https://docs.test/full.txt"] = []byte(
		"Investors may also face unusual glacier melt exposure risk.")
	agg := newTestAggregator(t, reg, mkt, docs)

	rec := agg.FetchFund(context.Background(), isinFull)
	if !rec.Escalation() {
		t.Fatalf("expected escalation, got %+v", rec)
	}
	for _, other := range rec.OtherRisks {
		if !strings.HasSuffix(other, "Risk") {
			t.Errorf("other risk %q not normalized", other)
		}
	}
}

func TestBatchSummary(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	reg.fail[isinBroken] = true
	mkt.fail[isinBroken] = true
	docs.docs["https://docs.test/third.txt"] = []byte(
		"The fund carries interest rate risk and unusual glacier melt exposure risk.")
	agg := newTestAggregator(t, reg, mkt, docs)

	res, err := agg.FetchBatch(context.Background(), []Entry{
		{ISIN: isinFull, ExpectedName: "Alpha Global Equity Fund A Acc"},
		{ISIN: isinBroken, ExpectedName: "Beta Momentum Fund"},
		{ISIN: isinThird},
	})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}

	sum := res.Summary()
	if sum.Total != 3 {
		t.Fatalf("Total = %d", sum.Total)
	}

	gaps := make(map[string]FieldGap, len(sum.FieldGaps))
	for _, g := range sum.FieldGaps {
		gaps[g.Field] = g
	}
	if g := gaps[FieldFundName]; g.Missing != 1 || g.Percent < 33 || g.Percent > 34 {
		t.Fatalf("fund_name gap = %+v", g)
	}
	if g := gaps[FieldFactsheetURL]; g.Missing != 0 {
		t.Fatalf("factsheet gap = %+v", g)
	}

	if len(sum.Escalations) != 1 || sum.Escalations[0].ISIN != isinThird {
		t.Fatalf("Escalations = %+v", sum.Escalations)
	}

	// The broken fund has an expected name but nothing fetched to
	// compare against; it must surface as a poor match.
	if len(sum.PoorMatches) != 1 || sum.PoorMatches[0].ISIN != isinBroken {
		t.Fatalf("PoorMatches = %+v", sum.PoorMatches)
	}
	if sum.PoorMatches[0].Quality != "Very Poor" {
		t.Fatalf("Quality = %q", sum.PoorMatches[0].Quality)
	}
}

func TestFetchBatchHonorsCancellation(t *testing.T) {
	reg, mkt, docs := populatedFakes()
	agg := newTestAggregator(t, reg, mkt, docs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := agg.FetchBatch(ctx, []Entry{{ISIN: isinFull}, {ISIN: isinThird}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res.Records) != 0 {
		t.Fatalf("got %d records after pre-cancelled context", len(res.Records))
	}
}

func TestParseEntries(t *testing.T) {
	input := `# batch for review
LU0048578792,Alpha Global Equity Fund A Acc

IE00B4468526
  SG9999005961 , Sigma Balanced Fund
`
	entries, err := ParseEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEntries: %v", err)
	}
	want := []Entry{
		{ISIN: "LU0048578792", ExpectedName: "Alpha Global Equity Fund A Acc"},
		{ISIN: "IE00B4468526"},
		{ISIN: "SG9999005961", ExpectedName: "Sigma Balanced Fund"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries = %+v, want %+v", entries, want)
	}
}
