package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fundlens-ai/fundlens/internal/fetch"
)

// MarketOptions configure the market tearsheet connector. TearsheetURL
// is a template with an {isin} placeholder.
type MarketOptions struct {
	TearsheetURL string
}

// Market scrapes the public tearsheet page for fields the regulatory
// feed does not carry.
type Market struct {
	client *http.Client
	opts   MarketOptions
}

func NewMarket(client *http.Client, opts MarketOptions) *Market {
	return &Market{client: client, opts: opts}
}

var (
	rePercent      = regexp.MustCompile(`(\d+\.?\d*)%`)
	reChargePct    = regexp.MustCompile(`\d+\.?\d*%`)
	reMoreArtifact = regexp.MustCompile(`\s*More\s*[▼▽⏷⏵]*\s*$`)
	reSpaces       = regexp.MustCompile(`\s+`)
)

// FetchFund downloads the tearsheet and parses all market fields. Fields
// absent from the page come back blank, not as errors.
func (m *Market) FetchFund(ctx context.Context, isin string) (MarketRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, expandURL(m.opts.TearsheetURL, isin, ""), nil)
	if err != nil {
		return MarketRecord{}, fmt.Errorf("market fund: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return MarketRecord{}, fetch.Transientf("market fund", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("market fund: unexpected status %s", resp.Status)
		if fetch.RetryableStatus(resp.StatusCode) {
			return MarketRecord{}, fetch.Transientf("market fund", err)
		}
		return MarketRecord{}, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return MarketRecord{}, fmt.Errorf("market fund: parse html: %w", err)
	}
	return MarketRecord{
		Geographic:    parseGeographic(doc),
		Objective:     parseObjective(doc),
		LaunchDate:    profileField(doc, "launch date"),
		OngoingCharge: parseOngoingCharge(doc),
		Category:      profileField(doc, "category"),
	}, nil
}

// ParseTearsheet parses a tearsheet already in memory. Split out so the
// parsers are testable against fixture HTML without a server.
func ParseTearsheet(html []byte) (MarketRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return MarketRecord{}, err
	}
	return MarketRecord{
		Geographic:    parseGeographic(doc),
		Objective:     parseObjective(doc),
		LaunchDate:    profileField(doc, "launch date"),
		OngoingCharge: parseOngoingCharge(doc),
		Category:      profileField(doc, "category"),
	}, nil
}

// parseGeographic reads the region allocation table. A single region
// above 80% names the geography; any other mix is "Global".
func parseGeographic(doc *goquery.Document) string {
	section := doc.Find(`div.mod-diversification__column[data-mod-section="Region"]`).First()
	if section.Length() == 0 {
		return ""
	}

	type allocation struct {
		region string
		pct    float64
	}
	var regions []allocation
	section.Find("table.mod-ui-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Find("span.mod-ui-table__cell--colored__wrapper").Text())
		if name == "" {
			return
		}
		m := rePercent.FindStringSubmatch(cells.Eq(1).Text())
		if m == nil {
			return
		}
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		regions = append(regions, allocation{region: name, pct: pct})
	})
	if len(regions) == 0 {
		return ""
	}
	for _, r := range regions {
		if r.pct > 80 {
			return r.region
		}
	}
	return "Global"
}

// parseObjective collects the objective paragraphs, dropping the
// expandable "More" widgets the page injects.
func parseObjective(doc *goquery.Document) string {
	var header *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.TrimSpace(h.Text()) == "Objective" {
			header = h
			return false
		}
		return true
	})
	if header == nil {
		return ""
	}
	content := header.Parent().Find("div.mod-module__content").First()
	if content.Length() == 0 {
		content = header.NextAllFiltered("div.mod-module__content").First()
	}
	if content.Length() == 0 {
		return ""
	}
	content.Find("div.mod-ui-show-more").Remove()
	content.Find("span.mod-ui-show-more__link").Remove()

	var parts []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := reMoreArtifact.ReplaceAllString(strings.TrimSpace(p.Text()), "")
		if text != "" {
			parts = append(parts, text)
		}
	})
	full := strings.Join(parts, " ")
	full = reMoreArtifact.ReplaceAllString(full, "")
	return strings.TrimSpace(reSpaces.ReplaceAllString(full, " "))
}

// profileField scans the th/td profile tables for a label substring.
func profileField(doc *goquery.Document, label string) string {
	var value string
	doc.Find("table.mod-ui-table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return true
		}
		if strings.Contains(strings.ToLower(strings.TrimSpace(th.Text())), label) {
			value = strings.TrimSpace(td.Text())
			return false
		}
		return true
	})
	return value
}

// parseOngoingCharge keeps only the percentage when the cell carries
// extra text, otherwise the raw cell value.
func parseOngoingCharge(doc *goquery.Document) string {
	raw := profileField(doc, "ongoing charge")
	if raw == "" {
		return ""
	}
	if pct := reChargePct.FindString(raw); pct != "" {
		return pct
	}
	return raw
}
