package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fundlens-ai/fundlens/internal/aggregate"
	"github.com/fundlens-ai/fundlens/internal/classify"
	"github.com/fundlens-ai/fundlens/internal/config"
	"github.com/fundlens-ai/fundlens/internal/docext"
	"github.com/fundlens-ai/fundlens/internal/fetch"
	"github.com/fundlens-ai/fundlens/internal/phrase"
	"github.com/fundlens-ai/fundlens/internal/report"
	"github.com/fundlens-ai/fundlens/internal/semantic"
	"github.com/fundlens-ai/fundlens/internal/source"
	"github.com/fundlens-ai/fundlens/internal/taxonomy"
)

func main() {
	configPath := flag.String("config", "fundlens.yaml", "Path to fundlens config file")
	inputPath := flag.String("input", "", "Input file, one fund per line: ISIN or ISIN,Expected Name")
	outPath := flag.String("out", "fund_data.xlsx", "Output spreadsheet path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	setupLogging(cfg.Logging.Level)

	if *inputPath == "" {
		log.Fatal("missing -input file")
	}
	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("failed to open input: %v", err)
	}
	entries, err := aggregate.ParseEntries(in)
	in.Close()
	if err != nil {
		log.Fatalf("failed to parse input: %v", err)
	}
	if len(entries) == 0 {
		log.Fatal("no ISINs found in input")
	}

	tax := taxonomy.Default()
	if cfg.Taxonomy.Path != "" {
		tax, err = taxonomy.LoadFile(cfg.Taxonomy.Path)
		if err != nil {
			log.Fatalf("failed to load taxonomy: %v", err)
		}
	}

	client := fetch.NewClient(fetch.ClientOptions{
		Timeout:     cfg.Fetch.Timeout(),
		InsecureTLS: cfg.Fetch.InsecureTLS,
	})
	reg := source.NewRegulatory(client, source.RegulatoryOptions{
		FundURL:        cfg.Sources.Regulatory.FundURL,
		DocumentURL:    cfg.Sources.Regulatory.DocumentURL,
		FactsheetURL:   cfg.Sources.Regulatory.FactsheetURL,
		AccessCode:     cfg.Sources.Regulatory.AccessCode(),
		DocumentTypeID: cfg.Sources.Regulatory.DocumentTypeID,
	})
	mkt := source.NewMarket(client, source.MarketOptions{
		TearsheetURL: cfg.Sources.Market.TearsheetURL,
	})

	backends, err := docext.ForNames(cfg.Extract.Backends)
	if err != nil {
		log.Fatalf("invalid extract backends: %v", err)
	}
	cascadeOpts := []docext.CascadeOption{docext.WithMinLength(cfg.Extract.MinLength)}
	if cfg.Extract.PreferRichest {
		cascadeOpts = append(cascadeOpts, docext.WithPreferRichest("risk"))
	}

	classifier := classify.New(tax, classify.Options{
		FuzzyPartialCutoff: cfg.Classify.FuzzyPartialCutoff,
		WordOverlap:        cfg.Classify.WordOverlap,
		SemanticThreshold:  float32(cfg.Classify.SemanticThreshold),
	}, loadScorer(cfg.Classify.BundleDir))
	if classifier.Degraded() {
		slog.Info("semantic tier disabled, using exact and fuzzy matching only")
	}

	agg := aggregate.New(aggregate.Options{
		Regulatory: reg,
		Market:     mkt,
		Documents:  source.NewDocuments(client),
		Cascade:    docext.NewCascade(backends, cascadeOpts...),
		Extractor:  phrase.New(phrase.WithWindow(cfg.Classify.Window)),
		Classifier: classifier,
		Retry:      fetch.Retry{MaxAttempts: cfg.Fetch.MaxAttempts, Backoff: cfg.Fetch.Backoff()},
		Limiter:    fetch.NewLimiter(cfg.Fetch.MinDelay()),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := agg.FetchBatch(ctx, entries)
	if err != nil {
		slog.Warn("batch interrupted, writing records completed so far",
			"done", len(res.Records), "total", len(entries), "err", err)
	}
	if len(res.Records) == 0 {
		log.Fatal("no records produced")
	}

	if err := (report.ExcelWriter{}).Write(res, *outPath); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	fmt.Printf("Report written to %s\n", *outPath)
	printSummary(res.Summary())
}

// loadScorer loads the embedding bundle when one is configured and
// present. Any failure just disables the semantic tier.
func loadScorer(bundleDir string) classify.Scorer {
	if bundleDir == "" || !semantic.BundlePresent(bundleDir) {
		return nil
	}
	emb, err := semantic.Load(bundleDir, semantic.DefaultSeqLen, semantic.DefaultHiddenSize)
	if err != nil {
		slog.Warn("failed to load embedding bundle", "dir", bundleDir, "err", err)
		return nil
	}
	return emb
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func printSummary(sum aggregate.Summary) {
	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total funds processed: %d\n", sum.Total)

	fmt.Printf("\nMissing fields:\n")
	gaps := false
	for _, g := range sum.FieldGaps {
		if g.Missing == 0 {
			continue
		}
		gaps = true
		fmt.Printf("  %-16s %d/%d (%.1f%%)\n", g.Field, g.Missing, sum.Total, g.Percent)
	}
	if !gaps {
		fmt.Println("  none")
	}

	if len(sum.Escalations) > 0 {
		fmt.Printf("\nUnclassified risks (manual review needed):\n")
		for _, e := range sum.Escalations {
			risks := e.OtherRisks
			if len(risks) > 2 {
				risks = risks[:2]
			}
			fmt.Printf("  %s: %s\n", e.ISIN, joinPreview(risks))
		}
	}

	if len(sum.PoorMatches) > 0 {
		fmt.Printf("\nPoor name matches:\n")
		for _, m := range sum.PoorMatches {
			fmt.Printf("  %s: expected %q, got %q (%.1f, %s)\n",
				m.ISIN, m.Expected, m.Actual, m.Score, m.Quality)
		}
	}
}

func joinPreview(risks []string) string {
	out := ""
	for i, r := range risks {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
