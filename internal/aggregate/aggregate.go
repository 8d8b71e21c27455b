// Package aggregate orchestrates the per-fund pipeline: regulatory
// fetch, market fetch, disclosure-document risk extraction, then merge
// and completeness flagging. One failed stage degrades the record, it
// never aborts the fund.
package aggregate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fundlens-ai/fundlens/internal/classify"
	"github.com/fundlens-ai/fundlens/internal/docext"
	"github.com/fundlens-ai/fundlens/internal/fetch"
	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/simscore"
	"github.com/fundlens-ai/fundlens/internal/source"
)

// Options wire the aggregator's collaborators. Regulatory, Market,
// Documents, Cascade, Extractor and Classifier are required.
type Options struct {
	Regulatory source.RegulatorySource
	Market     source.MarketSource
	Documents  source.DocumentFetcher
	Cascade    *docext.Cascade
	Extractor  *phrase.Extractor
	Classifier *classify.Classifier
	Retry      fetch.Retry
	Limiter    *fetch.Limiter
	Logger     *slog.Logger
}

// Aggregator runs the fund pipeline. Safe for sequential reuse across
// batches; the rate limiter is the only shared mutable state.
type Aggregator struct {
	reg        source.RegulatorySource
	mkt        source.MarketSource
	docs       source.DocumentFetcher
	cascade    *docext.Cascade
	extractor  *phrase.Extractor
	classifier *classify.Classifier
	retry      fetch.Retry
	limiter    *fetch.Limiter
	logger     *slog.Logger
}

func New(opts Options) *Aggregator {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = fetch.DefaultRetry()
	}
	if opts.Limiter == nil {
		opts.Limiter = fetch.NewLimiter(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Aggregator{
		reg:        opts.Regulatory,
		mkt:        opts.Market,
		docs:       opts.Documents,
		cascade:    opts.Cascade,
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		retry:      opts.Retry,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
	}
}

// stage runs one network stage under the shared rate limit and the
// retry policy.
func (a *Aggregator) stage(ctx context.Context, op string, fn func(context.Context) error) error {
	return a.retry.Do(ctx, op, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// FetchFund aggregates one fund by ISIN.
func (a *Aggregator) FetchFund(ctx context.Context, isin string) FundRecord {
	return a.fetchEntry(ctx, Entry{ISIN: isin})
}

func (a *Aggregator) fetchEntry(ctx context.Context, entry Entry) FundRecord {
	log := a.logger.With("isin", entry.ISIN)
	rec := FundRecord{ISIN: entry.ISIN, ExpectedName: entry.ExpectedName}

	// Derivable offline, present even when every fetch fails.
	rec.ApprovalStatus = source.ApprovalStatus(entry.ISIN)
	rec.FactsheetURL = a.reg.FactsheetURL(entry.ISIN)

	a.fetchRegulatory(ctx, log, &rec)
	a.fetchMarket(ctx, log, &rec)
	a.fetchRisks(ctx, log, &rec)

	if entry.ExpectedName != "" && rec.FundName != "" {
		s := simscore.Score(entry.ExpectedName, rec.FundName)
		rec.NameScore = s.Average
		rec.NameQuality = simscore.Quality(s.Average)
	}

	rec.finalize()
	return rec
}

func (a *Aggregator) fetchRegulatory(ctx context.Context, log *slog.Logger, rec *FundRecord) {
	var reg source.RegulatoryRecord
	err := a.stage(ctx, "regulatory", func(ctx context.Context) error {
		r, err := a.reg.FetchFund(ctx, rec.ISIN)
		if err == nil {
			reg = r
		}
		return err
	})
	if err != nil {
		log.Warn("regulatory fetch failed", "err", err)
		return
	}
	rec.FundHouse = reg.FundHouse
	rec.FundName = reg.FundName
	rec.AssetClass = reg.AssetClass
	rec.RiskBand = reg.RiskBand
	if reg.FactsheetURL != "" {
		rec.FactsheetURL = reg.FactsheetURL
	}
}

func (a *Aggregator) fetchMarket(ctx context.Context, log *slog.Logger, rec *FundRecord) {
	var mkt source.MarketRecord
	err := a.stage(ctx, "market", func(ctx context.Context) error {
		m, err := a.mkt.FetchFund(ctx, rec.ISIN)
		if err == nil {
			mkt = m
		}
		return err
	})
	if err != nil {
		log.Warn("market fetch failed", "err", err)
		return
	}
	rec.Geographic = mkt.Geographic
	rec.Objective = mkt.Objective
	rec.LaunchDate = mkt.LaunchDate
	rec.AnnualFee = mkt.OngoingCharge
	if rec.AssetClass != "" && mkt.Category != "" {
		rec.Sector = rec.AssetClass + " - " + mkt.Category
	}
}

// fetchRisks resolves the disclosure document, extracts its text and
// classifies the risk phrases. Every gap along the way leaves the risk
// fields blank instead of failing the fund.
func (a *Aggregator) fetchRisks(ctx context.Context, log *slog.Logger, rec *FundRecord) {
	var link string
	err := a.stage(ctx, "disclosure link", func(ctx context.Context) error {
		l, err := a.reg.FetchDisclosureLink(ctx, rec.ISIN)
		if err == nil {
			link = l
		}
		return err
	})
	if err != nil {
		log.Warn("disclosure link fetch failed", "err", err)
		return
	}
	if link == "" {
		log.Info("no disclosure document listed")
		return
	}
	rec.DisclosureURL = link

	var data []byte
	err = a.stage(ctx, "document", func(ctx context.Context) error {
		d, err := a.docs.FetchDocument(ctx, link)
		if err == nil {
			data = d
		}
		return err
	})
	if err != nil {
		log.Warn("document fetch failed", "url", link, "err", err)
		return
	}

	text, err := a.cascade.ExtractText(data)
	if err != nil {
		if errors.Is(err, docext.ErrUnavailable) {
			log.Warn("no extraction backend produced text", "url", link)
		} else {
			log.Warn("text extraction failed", "url", link, "err", err)
		}
		return
	}

	phrases := a.extractor.Extract(text)
	result := a.classifier.Classify(ctx, phrases)
	rec.StandardRisks = result.StandardRisks
	rec.OtherRisks = result.OtherRisks
	log.Info("risks classified",
		"phrases", len(phrases),
		"standard", len(result.StandardRisks),
		"other", len(result.OtherRisks))
}
