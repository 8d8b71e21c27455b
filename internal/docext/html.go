package docext

import (
	"bytes"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// HTML extracts the readable article text from an HTML document. Some
// distributors publish disclosure sheets as web pages rather than PDFs.
type HTML struct{}

// Name implements Backend.
func (HTML) Name() string { return "html" }

// Extract implements Backend.
func (HTML) Extract(data []byte) (string, error) {
	lower := bytes.ToLower(data[:min(len(data), 512)])
	if !bytes.Contains(lower, []byte("<html")) && !bytes.Contains(lower, []byte("<!doctype html")) {
		return "", fmt.Errorf("not an html document")
	}

	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{})
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return article.TextContent, nil
}
