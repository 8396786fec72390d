package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/qepting91/promo-scraper/internal/config"
	"github.com/qepting91/promo-scraper/internal/dashboard"
)

func main() {
	dir := flag.String("dir", "cleaned_data", "directory of <category>_cleaned.json files")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	logger.Info("Starting Dashboard", "port", cfg.Port, "dir", *dir)
	if err := dashboard.StartServer(*dir, cfg.Port); err != nil {
		logger.Error("Dashboard failed", "err", err)
		os.Exit(1)
	}
}
