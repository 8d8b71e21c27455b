package aggregate

import (
	"context"
)

// BatchResult holds one record per input entry, in input order.
type BatchResult struct {
	Records []FundRecord
}

// FetchBatch aggregates every entry sequentially. A fund whose fetches
// all fail still yields a record with its fields flagged missing.
// Cancellation is honored between funds; records completed so far are
// returned together with the context error.
func (a *Aggregator) FetchBatch(ctx context.Context, entries []Entry) (BatchResult, error) {
	res := BatchResult{Records: make([]FundRecord, 0, len(entries))}
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		a.logger.Info("processing fund", "isin", entry.ISIN, "n", i+1, "total", len(entries))
		res.Records = append(res.Records, a.fetchEntry(ctx, entry))
	}
	return res, nil
}

// FieldGap is the per-field completeness tally for a batch.
type FieldGap struct {
	Field   string
	Missing int
	Percent float64
}

// Escalation names a fund whose document carried risks outside the
// standard taxonomy.
type Escalation struct {
	ISIN       string
	OtherRisks []string
}

// NameMismatch names a fund whose fetched name matched the expected
// name poorly.
type NameMismatch struct {
	ISIN     string
	Expected string
	Actual   string
	Score    float64
	Quality  string
}

// Summary is the reviewer-facing batch digest.
type Summary struct {
	Total       int
	FieldGaps   []FieldGap
	Escalations []Escalation
	PoorMatches []NameMismatch
}

// Summary tallies missing fields, escalations and poor name matches
// across the batch.
func (r BatchResult) Summary() Summary {
	s := Summary{Total: len(r.Records)}

	counts := make(map[string]int, len(TrackedFields))
	for _, rec := range r.Records {
		for _, field := range TrackedFields {
			if rec.Missing[field] {
				counts[field]++
			}
		}
		if rec.Escalation() {
			s.Escalations = append(s.Escalations, Escalation{
				ISIN:       rec.ISIN,
				OtherRisks: rec.OtherRisks,
			})
		}
		if rec.ExpectedName != "" {
			quality := rec.NameQuality
			if quality == "" {
				// Expected name given but nothing fetched to compare.
				quality = "Very Poor"
			}
			if quality == "Poor" || quality == "Very Poor" {
				s.PoorMatches = append(s.PoorMatches, NameMismatch{
					ISIN:     rec.ISIN,
					Expected: rec.ExpectedName,
					Actual:   rec.FundName,
					Score:    rec.NameScore,
					Quality:  quality,
				})
			}
		}
	}

	for _, field := range TrackedFields {
		gap := FieldGap{Field: field, Missing: counts[field]}
		if s.Total > 0 {
			gap.Percent = float64(gap.Missing) / float64(s.Total) * 100
		}
		s.FieldGaps = append(s.FieldGaps, gap)
	}
	return s
}
