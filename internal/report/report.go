// Package report renders a batch into the reviewer-facing spreadsheet:
// one row per fund, blanks highlighted so gaps are visible at a glance.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fundlens-ai/fundlens/internal/aggregate"
)

// Writer renders a batch result to a file. The core pipeline only
// depends on this interface, not on the spreadsheet library.
type Writer interface {
	Write(res aggregate.BatchResult, path string) error
}

// SheetName is the single output worksheet.
const SheetName = "Fund Data"

type column struct {
	title string
	width float64
	wrap  bool
	field string // completeness-flag key, blank when never highlighted
	value func(no int, r *aggregate.FundRecord) string
}

var columns = []column{
	{title: "No.", width: 5, value: func(no int, _ *aggregate.FundRecord) string {
		return strconv.Itoa(no)
	}},
	{title: "Fund House", width: 12, wrap: true, field: aggregate.FieldFundHouse,
		value: func(_ int, r *aggregate.FundRecord) string { return r.FundHouse }},
	{title: "Fund Name", width: 34, wrap: true, field: aggregate.FieldFundName,
		value: func(_ int, r *aggregate.FundRecord) string { return r.FundName }},
	{title: "ISIN", width: 17,
		value: func(_ int, r *aggregate.FundRecord) string { return r.ISIN }},
	{title: "Approval Status", width: 12, field: aggregate.FieldApprovalStatus,
		value: func(_ int, r *aggregate.FundRecord) string { return r.ApprovalStatus }},
	{title: "Asset", width: 20, wrap: true, field: aggregate.FieldAssetClass,
		value: func(_ int, r *aggregate.FundRecord) string { return r.AssetClass }},
	{title: "Geographic", width: 15, wrap: true, field: aggregate.FieldGeographic,
		value: func(_ int, r *aggregate.FundRecord) string { return r.Geographic }},
	{title: "Sector", width: 25, wrap: true, field: aggregate.FieldSector,
		value: func(_ int, r *aggregate.FundRecord) string { return r.Sector }},
	{title: "Launch Date", width: 15, field: aggregate.FieldLaunchDate,
		value: func(_ int, r *aggregate.FundRecord) string { return r.LaunchDate }},
	{title: "Annual Management Fee", width: 15, field: aggregate.FieldAnnualFee,
		value: func(_ int, r *aggregate.FundRecord) string { return r.AnnualFee }},
	{title: "Factsheet", width: 60, wrap: true, field: aggregate.FieldFactsheetURL,
		value: func(_ int, r *aggregate.FundRecord) string { return r.FactsheetURL }},
	{title: "Highlights (PHS Link)", width: 60, wrap: true, field: aggregate.FieldDisclosureURL,
		value: func(_ int, r *aggregate.FundRecord) string { return r.DisclosureURL }},
	{title: "Investment Objective", width: 60, wrap: true, field: aggregate.FieldObjective,
		value: func(_ int, r *aggregate.FundRecord) string { return r.Objective }},
	{title: "Key Risks for Investors", width: 60, wrap: true, field: aggregate.FieldStandardRisks,
		value: func(_ int, r *aggregate.FundRecord) string { return strings.Join(r.StandardRisks, "; ") }},
	{title: "Other Risks", width: 60, wrap: true,
		value: func(_ int, r *aggregate.FundRecord) string { return strings.Join(r.OtherRisks, "; ") }},
	{title: "Internal Risk Classification", width: 20, field: aggregate.FieldRiskBand,
		value: func(_ int, r *aggregate.FundRecord) string { return r.RiskBand }},
}

var nameMatchColumns = []column{
	{title: "Expected Name", width: 34, wrap: true,
		value: func(_ int, r *aggregate.FundRecord) string { return r.ExpectedName }},
	{title: "Name Score", width: 12,
		value: func(_ int, r *aggregate.FundRecord) string {
			if r.ExpectedName == "" {
				return ""
			}
			return strconv.FormatFloat(r.NameScore, 'f', 2, 64)
		}},
	{title: "Match Quality", width: 14,
		value: func(_ int, r *aggregate.FundRecord) string { return r.NameQuality }},
}

// ExcelWriter writes the spreadsheet via excelize.
type ExcelWriter struct{}

// Write renders the batch to an xlsx file at path. Name-match columns
// are appended only when at least one record carries an expected name.
func (ExcelWriter) Write(res aggregate.BatchResult, path string) error {
	cols := columns
	for i := range res.Records {
		if res.Records[i].ExpectedName != "" {
			cols = append(append([]column{}, columns...), nameMatchColumns...)
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return fmt.Errorf("report: styles: %w", err)
	}

	for i, col := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("report: column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return fmt.Errorf("report: width %s: %w", name, err)
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, col.title); err != nil {
			return fmt.Errorf("report: header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, styles.header); err != nil {
			return fmt.Errorf("report: header style %s: %w", cell, err)
		}
	}

	for ri := range res.Records {
		rec := &res.Records[ri]
		row := ri + 2
		if err := f.SetRowHeight(SheetName, row, 120); err != nil {
			return fmt.Errorf("report: row height %d: %w", row, err)
		}
		for ci, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(ci+1, row)
			if err := f.SetCellValue(SheetName, cell, col.value(ri+1, rec)); err != nil {
				return fmt.Errorf("report: cell %s: %w", cell, err)
			}
			missing := col.field != "" && rec.Missing[col.field]
			if err := f.SetCellStyle(SheetName, cell, cell, styles.cell(col.wrap, missing)); err != nil {
				return fmt.Errorf("report: cell style %s: %w", cell, err)
			}
		}
	}

	// First four columns stay visible while reviewers scroll the wide
	// detail columns.
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      4,
		TopLeftCell: "E1",
		ActivePane:  "topRight",
	}); err != nil {
		return fmt.Errorf("report: panes: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// styleSet caches the four data-cell style combinations plus the header
// style. excelize deduplicates styles by id, so they are created once.
type styleSet struct {
	header   int
	center   int
	wrap     int
	miss     int
	missWrap int
}

func (s styleSet) cell(wrap, missing bool) int {
	switch {
	case missing && wrap:
		return s.missWrap
	case missing:
		return s.miss
	case wrap:
		return s.wrap
	default:
		return s.center
	}
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"CCCCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}

	yellow := excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	wrapCenter := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	if s.center, err = f.NewStyle(&excelize.Style{Alignment: center}); err != nil {
		return s, err
	}
	if s.wrap, err = f.NewStyle(&excelize.Style{Alignment: wrapCenter}); err != nil {
		return s, err
	}
	if s.miss, err = f.NewStyle(&excelize.Style{Alignment: center, Fill: yellow}); err != nil {
		return s, err
	}
	if s.missWrap, err = f.NewStyle(&excelize.Style{Alignment: wrapCenter, Fill: yellow}); err != nil {
		return s, err
	}
	return s, nil
}
