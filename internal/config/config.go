package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds fundlens configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Extract  ExtractConfig  `yaml:"extract"`
	Classify ClassifyConfig `yaml:"classify"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SourcesConfig struct {
	Regulatory RegulatorySourceConfig `yaml:"regulatory"`
	Market     MarketSourceConfig     `yaml:"market"`
}

type RegulatorySourceConfig struct {
	FundURL        string `yaml:"fund_url"`        // template with {isin} and {accesscode}
	DocumentURL    string `yaml:"document_url"`    // template with {isin}
	FactsheetURL   string `yaml:"factsheet_url"`   // template with {isin}
	AccessCodeEnv  string `yaml:"access_code_env"` // e.g. "FUND_FEED_ACCESS_CODE"
	DocumentTypeID string `yaml:"document_type_id"`
}

// AccessCode resolves the feed access code from the configured
// environment variable.
func (c RegulatorySourceConfig) AccessCode() string {
	if c.AccessCodeEnv == "" {
		return ""
	}
	return os.Getenv(c.AccessCodeEnv)
}

type MarketSourceConfig struct {
	TearsheetURL string `yaml:"tearsheet_url"` // template with {isin}
}

type FetchConfig struct {
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	MaxAttempts    int  `yaml:"max_attempts"`
	BackoffSeconds int  `yaml:"backoff_seconds"`
	// MinDelayMillis is the minimum delay between outbound fetches.
	// 0 (or absent) selects the default; -1 disables rate limiting.
	MinDelayMillis int  `yaml:"min_delay_ms"`
	InsecureTLS    bool `yaml:"insecure_tls"`
}

func (c FetchConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }
func (c FetchConfig) Backoff() time.Duration { return time.Duration(c.BackoffSeconds) * time.Second }

// MinDelay converts MinDelayMillis to a duration. The -1 disable
// sentinel comes out as zero, which turns the limiter off.
func (c FetchConfig) MinDelay() time.Duration {
	if c.MinDelayMillis < 0 {
		return 0
	}
	return time.Duration(c.MinDelayMillis) * time.Millisecond
}

type ExtractConfig struct {
	Backends      []string `yaml:"backends"` // pdf | html | plain, tried in order
	MinLength     int      `yaml:"min_length"`
	PreferRichest bool     `yaml:"prefer_richest"`
}

// ClassifyConfig tunes the matching tiers. The thresholds treat 0 as
// "use the default": a literal zero cutoff would match every phrase, so
// it is not a settable value.
type ClassifyConfig struct {
	Window             int     `yaml:"window"` // phrase words each side of a trigger
	FuzzyPartialCutoff int     `yaml:"fuzzy_partial_cutoff"`
	WordOverlap        float64 `yaml:"word_overlap"`
	SemanticThreshold  float64 `yaml:"semantic_threshold"`
	BundleDir          string  `yaml:"bundle_dir"` // embedding bundle; blank disables the semantic tier
}

type TaxonomyConfig struct {
	Path string `yaml:"path"` // YAML taxonomy override; blank uses the built-in table
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Sources.Regulatory.DocumentTypeID == "" {
		cfg.Sources.Regulatory.DocumentTypeID = "77"
	}

	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.MaxAttempts == 0 {
		cfg.Fetch.MaxAttempts = 3
	}
	if cfg.Fetch.BackoffSeconds == 0 {
		cfg.Fetch.BackoffSeconds = 1
	}
	if cfg.Fetch.MinDelayMillis == 0 {
		cfg.Fetch.MinDelayMillis = 2000
	}

	if len(cfg.Extract.Backends) == 0 {
		cfg.Extract.Backends = []string{"pdf", "html", "plain"}
	}
	if cfg.Extract.MinLength == 0 {
		cfg.Extract.MinLength = 20
	}

	if cfg.Classify.Window == 0 {
		cfg.Classify.Window = 3
	}
	if cfg.Classify.FuzzyPartialCutoff == 0 {
		cfg.Classify.FuzzyPartialCutoff = 90
	}
	if cfg.Classify.WordOverlap == 0 {
		cfg.Classify.WordOverlap = 0.8
	}
	if cfg.Classify.SemanticThreshold == 0 {
		cfg.Classify.SemanticThreshold = 0.7
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
