package aggregate

import (
	"context"
	"errors"

	"github.com/fundlens-ai/fundlens/internal/fetch"
	"github.com/fundlens-ai/fundlens/internal/source"
)

// fakeRegulatory serves canned records per ISIN and can be forced to
// fail with a transient error to exercise retries.
type fakeRegulatory struct {
	records map[string]source.RegulatoryRecord
	links   map[string]string
	fail    map[string]bool
	calls   int
}

func (f *fakeRegulatory) FetchFund(_ context.Context, isin string) (source.RegulatoryRecord, error) {
	f.calls++
	if f.fail[isin] {
		return source.RegulatoryRecord{}, fetch.Transientf("regulatory fund", errors.New("feed down"))
	}
	rec, ok := f.records[isin]
	if !ok {
		return source.RegulatoryRecord{}, errors.New("unknown isin")
	}
	return rec, nil
}

func (f *fakeRegulatory) FetchDisclosureLink(_ context.Context, isin string) (string, error) {
	if f.fail[isin] {
		return "", fetch.Transientf("disclosure list", errors.New("feed down"))
	}
	return f.links[isin], nil
}

func (f *fakeRegulatory) FactsheetURL(isin string) string {
	if isin == "" {
		return ""
	}
	return "https://factsheets.test/" + isin + ".pdf"
}

type fakeMarket struct {
	records map[string]source.MarketRecord
	fail    map[string]bool
}

func (f *fakeMarket) FetchFund(_ context.Context, isin string) (source.MarketRecord, error) {
	if f.fail[isin] {
		return source.MarketRecord{}, fetch.Transientf("market fund", errors.New("market down"))
	}
	rec, ok := f.records[isin]
	if !ok {
		return source.MarketRecord{}, errors.New("unknown isin")
	}
	return rec, nil
}

type fakeDocuments struct {
	docs map[string][]byte
	fail bool
}

func (f *fakeDocuments) FetchDocument(_ context.Context, url string) ([]byte, error) {
	if f.fail {
		return nil, fetch.Transientf("document", errors.New("host down"))
	}
	data, ok := f.docs[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}
