// Package source implements the external data-source connectors: the
// regulatory fund-data feed (XML), the market-data tearsheet (HTML), and
// raw document fetch. Each connector returns one structured record per
// fund identifier and is independent of the others.
package source

import (
	"context"
	"strings"
)

// RegulatoryRecord is the structured output of the regulatory feed.
// Unknown fields are blank, never omitted.
type RegulatoryRecord struct {
	FundHouse    string
	FundName     string
	AssetClass   string
	RiskBand     string
	FactsheetURL string
}

// MarketRecord is the structured output of the market-data tearsheet.
type MarketRecord struct {
	Geographic    string
	Objective     string
	LaunchDate    string
	OngoingCharge string
	Category      string
}

// RegulatorySource fetches the regulatory record and the latest
// disclosure-document link for one ISIN. FactsheetURL is derivable
// offline and must work even when the feed is down.
type RegulatorySource interface {
	FetchFund(ctx context.Context, isin string) (RegulatoryRecord, error)
	FetchDisclosureLink(ctx context.Context, isin string) (string, error)
	FactsheetURL(isin string) string
}

// MarketSource fetches the market record for one ISIN.
type MarketSource interface {
	FetchFund(ctx context.Context, isin string) (MarketRecord, error)
}

// DocumentFetcher downloads raw document bytes.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// assetMapping folds the feed's raw category group into the standard
// asset class labels. Unknown raw values map to blank.
var assetMapping = []struct{ key, label string }{
	{"allocation", "Balanced Fund"},
	{"equity", "Equity Fund"},
	{"fixed income", "Fixed Income Fund"},
	{"commodity", "Commodity Fund"},
	{"cash equivalent", "Cash Equivalent Fund"},
	{"alternative", "Alternative Fund"},
}

// riskBands maps an asset class to the internal risk classification.
var riskBands = map[string]string{
	"cash equivalent fund": "Low",
	"fixed income fund":    "Low to Medium",
	"balanced fund":        "Medium to High",
	"equity fund":          "High",
	"commodity fund":       "High",
	"alternative fund":     "High",
}

// NormalizeAssetClass converts a raw asset type into its standard label,
// blank when unknown.
func NormalizeAssetClass(raw string) string {
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, m := range assetMapping {
		if strings.Contains(lower, m.key) {
			return m.label
		}
	}
	return ""
}

// RiskBand returns the internal risk classification for an asset class,
// blank when unknown.
func RiskBand(assetClass string) string {
	if assetClass == "" {
		return ""
	}
	return riskBands[strings.ToLower(assetClass)]
}

// ApprovalStatus derives the regulatory approval status from the ISIN's
// two-letter country prefix. Pure lookup, no network dependency; unknown
// prefixes yield blank so they are flagged downstream.
func ApprovalStatus(isin string) string {
	if len(isin) < 2 {
		return ""
	}
	switch strings.ToUpper(isin[:2]) {
	case "LU", "IE":
		return "Recognised"
	case "SG":
		return "Authorised"
	default:
		return ""
	}
}
