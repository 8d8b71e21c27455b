package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fundlens-ai/fundlens/internal/fetch"
)

// maxDocumentBytes caps disclosure downloads; factsheets and highlight
// sheets are small, anything larger is a misdirected link.
const maxDocumentBytes = 32 << 20

// Documents downloads raw disclosure documents for text extraction.
type Documents struct {
	client *http.Client
}

func NewDocuments(client *http.Client) *Documents {
	return &Documents{client: client}
}

// FetchDocument retrieves the document bytes at url.
func (d *Documents) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fetch.Transientf("document", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("document: unexpected status %s", resp.Status)
		if fetch.RetryableStatus(resp.StatusCode) {
			return nil, fetch.Transientf("document", err)
		}
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fetch.Transientf("document", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("document: response exceeds %d bytes", maxDocumentBytes)
	}
	return data, nil
}
