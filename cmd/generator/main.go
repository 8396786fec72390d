package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/patterns"
)

func main() {
	postsDir := flag.String("posts", "", "aggregate promotional_text from <keyword>_posts.json files in this directory")
	cleanedDir := flag.String("cleaned", "", "derive patterns from <category>_cleaned.json files in this directory")
	patternsDir := flag.String("patterns", "processed_data", "directory holding all_promotional_patterns.json")
	keywords := flag.String("keywords", "", "comma-separated keywords to generate copy for")
	variations := flag.Int("variations", 3, "variants per keyword")
	outDir := flag.String("out", "generated_text", "directory for generated copy")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Build patterns when asked, otherwise reuse the saved ones
	if *postsDir != "" || *cleanedDir != "" {
		p := domain.NewPatterns()
		if *postsDir != "" {
			agg, err := patterns.Aggregate(*postsDir, logger)
			if err != nil {
				logger.Error("Aggregation failed", "dir", *postsDir, "err", err)
				os.Exit(1)
			}
			patterns.Merge(p, agg)
		}
		if *cleanedDir != "" {
			derived, err := patterns.FromCleaned(*cleanedDir, logger)
			if err != nil {
				logger.Error("Derivation failed", "dir", *cleanedDir, "err", err)
				os.Exit(1)
			}
			patterns.Merge(p, derived)
		}
		if err := patterns.Save(*patternsDir, p); err != nil {
			logger.Error("Save patterns failed", "err", err)
			os.Exit(1)
		}
		logger.Info("Patterns saved", "dir", *patternsDir)
	}

	if *keywords == "" {
		return
	}
	p, err := patterns.Load(*patternsDir)
	if err != nil {
		logger.Error("Load patterns failed", "dir", *patternsDir, "err", err)
		os.Exit(1)
	}

	// 2. Generate
	gen := patterns.NewGenerator(p, nil)
	for _, kw := range strings.Split(*keywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		variants := gen.Generate(kw, *variations)
		path, err := patterns.WriteVariants(*outDir, kw, variants)
		if err != nil {
			logger.Error("Write variants failed", "keyword", kw, "err", err)
			continue
		}
		if len(variants) > 0 {
			fmt.Printf("\n%s\n\n", variants[0])
		}
		logger.Info("Copy generated", "keyword", kw, "variants", len(variants), "file", path)
	}
}
