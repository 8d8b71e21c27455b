package docext

import (
	"fmt"
	"unicode/utf8"
)

// Plain accepts bytes that already are valid UTF-8 text. Last-resort
// backend for feeds that serve pre-extracted text.
type Plain struct{}

// Name implements Backend.
func (Plain) Name() string { return "plain" }

// Extract implements Backend.
func (Plain) Extract(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid utf-8 text")
	}
	return string(data), nil
}
