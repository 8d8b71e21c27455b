package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fundlens-ai/fundlens/internal/fetch"
)

// RegulatoryOptions configure the regulatory feed connector. URL fields
// are templates with {isin} and {accesscode} placeholders.
type RegulatoryOptions struct {
	FundURL      string
	DocumentURL  string
	FactsheetURL string
	AccessCode   string
	// DocumentTypeID selects the disclosure document kind in the
	// document feed; defaults to "77" (product highlights sheet).
	DocumentTypeID string
}

// Regulatory pulls structured fund data from the regulatory XML feed.
type Regulatory struct {
	client *http.Client
	opts   RegulatoryOptions
}

// NewRegulatory builds the connector over a shared HTTP client.
func NewRegulatory(client *http.Client, opts RegulatoryOptions) *Regulatory {
	if opts.DocumentTypeID == "" {
		opts.DocumentTypeID = "77"
	}
	return &Regulatory{client: client, opts: opts}
}

func expandURL(template, isin, accessCode string) string {
	s := strings.ReplaceAll(template, "{isin}", url.QueryEscape(isin))
	return strings.ReplaceAll(s, "{accesscode}", url.QueryEscape(accessCode))
}

// FactsheetURL builds the public factsheet link for an ISIN. No network
// call; works even when the feed itself is unreachable.
func (r *Regulatory) FactsheetURL(isin string) string {
	if isin == "" || r.opts.FactsheetURL == "" {
		return ""
	}
	return expandURL(r.opts.FactsheetURL, isin, r.opts.AccessCode)
}

func (r *Regulatory) get(ctx context.Context, op, rawurl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fetch.Transientf(op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%s: unexpected status %s", op, resp.Status)
		if fetch.RetryableStatus(resp.StatusCode) {
			return nil, fetch.Transientf(op, err)
		}
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// FetchFund retrieves and normalizes the regulatory record for one ISIN.
func (r *Regulatory) FetchFund(ctx context.Context, isin string) (RegulatoryRecord, error) {
	data, err := r.get(ctx, "regulatory fund", expandURL(r.opts.FundURL, isin, r.opts.AccessCode))
	if err != nil {
		return RegulatoryRecord{}, err
	}
	fields, err := xmlFieldValues(data, "AdvisoryCompanyName", "FundLegalName", "CategoryGroupName")
	if err != nil {
		return RegulatoryRecord{}, fmt.Errorf("regulatory fund: parse response: %w", err)
	}

	asset := NormalizeAssetClass(fields["CategoryGroupName"])
	return RegulatoryRecord{
		FundHouse:    fields["AdvisoryCompanyName"],
		FundName:     fields["FundLegalName"],
		AssetClass:   asset,
		RiskBand:     RiskBand(asset),
		FactsheetURL: r.FactsheetURL(isin),
	}, nil
}

// xmlFieldValues scans an XML document and returns the text of the first
// element matching each wanted local name. Namespaces are ignored; the
// feed mixes namespaced and plain elements across endpoints.
func xmlFieldValues(data []byte, names ...string) (map[string]string, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	got := make(map[string]string, len(names))

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !want[start.Name.Local] {
			continue
		}
		if _, seen := got[start.Name.Local]; seen {
			continue
		}
		// Decoding into a string collects the element's own character
		// data, skipping any nested elements, wherever the text sits
		// relative to them.
		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return nil, err
		}
		got[start.Name.Local] = strings.TrimSpace(text)
	}
	return got, nil
}

type disclosureDoc struct {
	Type struct {
		ID string `xml:"DocumentTypeId,attr"`
	} `xml:"DocumentType"`
	Language string `xml:"Language"`
	Date     string `xml:"DocumentDate"`
	ViewURL  string `xml:"ViewUrl"`
	Market   string `xml:"Market"`
}

// FetchDisclosureLink returns the ViewUrl of the newest English
// disclosure document for the ISIN, preferring the Singapore market on
// date ties. Blank when no matching document exists.
func (r *Regulatory) FetchDisclosureLink(ctx context.Context, isin string) (string, error) {
	data, err := r.get(ctx, "disclosure list", expandURL(r.opts.DocumentURL, isin, r.opts.AccessCode))
	if err != nil {
		return "", err
	}

	type candidate struct {
		date      time.Time
		url       string
		singapore bool
	}
	var docs []candidate

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("disclosure list: parse response: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Document" {
			continue
		}
		var d disclosureDoc
		if err := dec.DecodeElement(&d, &start); err != nil {
			return "", fmt.Errorf("disclosure list: parse document: %w", err)
		}
		if d.Type.ID != r.opts.DocumentTypeID || d.Language != "English" || d.ViewURL == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		docs = append(docs, candidate{
			date:      date,
			url:       d.ViewURL,
			singapore: strings.EqualFold(d.Market, "Singapore"),
		})
	}
	if len(docs) == 0 {
		return "", nil
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].date.Equal(docs[j].date) {
			return docs[i].date.After(docs[j].date)
		}
		return docs[i].singapore && !docs[j].singapore
	})
	return docs[0].url, nil
}
