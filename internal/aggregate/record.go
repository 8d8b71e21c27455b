package aggregate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Field keys used for completeness flags, summaries and report
// highlighting. Order matches the report columns.
const (
	FieldFundHouse      = "fund_house"
	FieldFundName       = "fund_name"
	FieldApprovalStatus = "approval_status"
	FieldAssetClass     = "asset_class"
	FieldGeographic     = "geographic"
	FieldSector         = "sector"
	FieldLaunchDate     = "launch_date"
	FieldAnnualFee      = "annual_fee"
	FieldFactsheetURL   = "factsheet_url"
	FieldDisclosureURL  = "disclosure_url"
	FieldObjective      = "objective"
	FieldStandardRisks  = "standard_risks"
	FieldRiskBand       = "risk_band"
)

// TrackedFields lists every field that participates in completeness
// flagging, in report order.
var TrackedFields = []string{
	FieldFundHouse,
	FieldFundName,
	FieldApprovalStatus,
	FieldAssetClass,
	FieldGeographic,
	FieldSector,
	FieldLaunchDate,
	FieldAnnualFee,
	FieldFactsheetURL,
	FieldDisclosureURL,
	FieldObjective,
	FieldStandardRisks,
	FieldRiskBand,
}

// FundRecord is the aggregated view of one fund. Created once per ISIN
// per batch and never mutated after the batch completes. Unknown fields
// are blank and flagged in Missing.
type FundRecord struct {
	ISIN           string
	FundHouse      string
	FundName       string
	ApprovalStatus string
	AssetClass     string
	Geographic     string
	Sector         string
	LaunchDate     string
	AnnualFee      string
	FactsheetURL   string
	DisclosureURL  string
	Objective      string
	StandardRisks  []string
	OtherRisks     []string
	RiskBand       string

	// Name match against the caller-supplied expected name; zero value
	// when no expected name was given.
	ExpectedName string
	NameScore    float64
	NameQuality  string

	// Missing marks fields no source could provide.
	Missing map[string]bool
}

// fieldValue maps a tracked field key to its record value. Risk lists
// collapse to their joined form so blankness means "nothing found".
func (r *FundRecord) fieldValue(key string) string {
	switch key {
	case FieldFundHouse:
		return r.FundHouse
	case FieldFundName:
		return r.FundName
	case FieldApprovalStatus:
		return r.ApprovalStatus
	case FieldAssetClass:
		return r.AssetClass
	case FieldGeographic:
		return r.Geographic
	case FieldSector:
		return r.Sector
	case FieldLaunchDate:
		return r.LaunchDate
	case FieldAnnualFee:
		return r.AnnualFee
	case FieldFactsheetURL:
		return r.FactsheetURL
	case FieldDisclosureURL:
		return r.DisclosureURL
	case FieldObjective:
		return r.Objective
	case FieldStandardRisks:
		return strings.Join(r.StandardRisks, "; ")
	case FieldRiskBand:
		return r.RiskBand
	}
	return ""
}

// finalize recomputes the completeness flags from the field values.
func (r *FundRecord) finalize() {
	r.Missing = make(map[string]bool, len(TrackedFields))
	for _, key := range TrackedFields {
		if r.fieldValue(key) == "" {
			r.Missing[key] = true
		}
	}
}

// Escalation reports whether the record carries risks outside the
// standard taxonomy and needs manual review.
func (r *FundRecord) Escalation() bool {
	return len(r.OtherRisks) > 0
}

// Entry is one batch input line: an ISIN, optionally with the fund name
// the caller expects the feed to return.
type Entry struct {
	ISIN         string
	ExpectedName string
}

// ParseEntries reads batch input, one fund per line: "ISIN" or
// "ISIN,Expected Name". Blank lines and '#' comments are skipped.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		isin, expected, _ := strings.Cut(line, ",")
		isin = strings.TrimSpace(isin)
		if isin == "" {
			continue
		}
		entries = append(entries, Entry{
			ISIN:         isin,
			ExpectedName: strings.TrimSpace(expected),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}
