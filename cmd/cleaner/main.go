package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/qepting91/promo-scraper/internal/cleaner"
	"github.com/qepting91/promo-scraper/internal/config"
)

func main() {
	dataDir := flag.String("data", "data", "directory of scraped posts, one subdirectory per category")
	outDir := flag.String("out", "cleaned_data", "directory for cleaned output")
	workers := flag.Int("workers", 0, "concurrent LLM workers (default CLEANER_WORKERS)")
	fill := flag.Bool("fill", false, "autofill empty fields of existing cleaned files instead of cleaning")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	client, err := cfg.LLMClient(logger)
	if err != nil {
		logger.Error("LLM unavailable, set LLM_API_KEY", "err", err)
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = cfg.CleanerWorkers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := cleaner.New(client, *workers, logger)
	if *fill {
		files, _ := filepath.Glob(filepath.Join(*outDir, "*_cleaned.json"))
		if len(files) == 0 {
			logger.Error("No cleaned files to fill", "dir", *outDir)
			os.Exit(1)
		}
		for _, f := range files {
			report, err := c.FillFile(ctx, f)
			if err != nil {
				logger.Error("Autofill failed", "file", f, "err", err)
				continue
			}
			logger.Info("Autofill done", "file", report.File, "total", report.Total, "updated", report.Updated)
		}
		return
	}

	summary, err := c.CleanAll(ctx, *dataDir, *outDir)
	if err != nil {
		logger.Error("Cleaning failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Cleaning complete", "files", summary.Files, "cleaned", summary.Cleaned, "by_category", summary.ByCategory)
}
