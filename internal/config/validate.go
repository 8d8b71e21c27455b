package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
// Any error here is fatal at startup.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := validateTemplate("sources.regulatory.fund_url", cfg.Sources.Regulatory.FundURL, true); err != nil {
		return err
	}
	if err := validateTemplate("sources.regulatory.document_url", cfg.Sources.Regulatory.DocumentURL, false); err != nil {
		return err
	}
	if err := validateTemplate("sources.regulatory.factsheet_url", cfg.Sources.Regulatory.FactsheetURL, false); err != nil {
		return err
	}
	if err := validateTemplate("sources.market.tearsheet_url", cfg.Sources.Market.TearsheetURL, true); err != nil {
		return err
	}

	if cfg.Fetch.TimeoutSeconds < 0 || cfg.Fetch.MaxAttempts < 1 || cfg.Fetch.BackoffSeconds < 0 {
		return errors.New("fetch settings must be non-negative with at least one attempt")
	}
	if cfg.Fetch.MinDelayMillis < -1 {
		return fmt.Errorf("fetch.min_delay_ms must be -1 (disabled) or non-negative, got %d", cfg.Fetch.MinDelayMillis)
	}

	if len(cfg.Extract.Backends) == 0 {
		return errors.New("at least one extract backend must be configured")
	}
	for _, b := range cfg.Extract.Backends {
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "pdf", "html", "plain":
		default:
			return fmt.Errorf("unknown extract backend %q (want pdf, html or plain)", b)
		}
	}
	if cfg.Extract.MinLength < 1 {
		return errors.New("extract.min_length must be at least 1")
	}

	if cfg.Classify.Window < 1 {
		return errors.New("classify.window must be at least 1")
	}
	if cfg.Classify.FuzzyPartialCutoff < 0 || cfg.Classify.FuzzyPartialCutoff > 100 {
		return fmt.Errorf("classify.fuzzy_partial_cutoff must be in [0,100], got %d", cfg.Classify.FuzzyPartialCutoff)
	}
	if cfg.Classify.WordOverlap < 0 || cfg.Classify.WordOverlap > 1 {
		return fmt.Errorf("classify.word_overlap must be in [0,1], got %v", cfg.Classify.WordOverlap)
	}
	if cfg.Classify.SemanticThreshold < 0 || cfg.Classify.SemanticThreshold > 1 {
		return fmt.Errorf("classify.semantic_threshold must be in [0,1], got %v", cfg.Classify.SemanticThreshold)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}

	return nil
}

// validateTemplate checks a URL template. Required templates must be set
// and carry an {isin} placeholder; optional ones are checked only when
// present.
func validateTemplate(field, tmpl string, required bool) error {
	if strings.TrimSpace(tmpl) == "" {
		if required {
			return fmt.Errorf("%s must be set", field)
		}
		return nil
	}
	if !strings.Contains(tmpl, "{isin}") {
		return fmt.Errorf("%s missing {isin} placeholder", field)
	}
	u, err := url.Parse(tmpl)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https", field)
	}
	return nil
}
