package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/qepting91/promo-scraper/internal/browser"
	"github.com/qepting91/promo-scraper/internal/collector"
	"github.com/qepting91/promo-scraper/internal/config"
	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/ingest"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// runEntry is one line of the run journal.
type runEntry struct {
	RunID      string    `json:"run_id"`
	Keyword    string    `json:"keyword"`
	Target     int       `json:"target"`
	State      string    `json:"state"`
	Collected  int       `json:"collected"`
	Rounds     int       `json:"rounds"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code so deferred cleanup (browser, archive) happens
// before the process exits.
func run(args []string) int {
	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	keywords := fs.String("keywords", "", "comma-separated keywords (default: input/targets.csv)")
	count := fs.Int("n", 20, "posts to collect per keyword")
	expand := fs.Bool("expand", false, "search related keywords until the target is reached")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// 1. Setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return 1
	}
	opts, err := cfg.CollectorOptions()
	if err != nil {
		logger.Error("Invalid tuning file", "path", cfg.TuningFile, "err", err)
		return 1
	}

	// 2. Load Inputs
	targets := flagTargets(*keywords, *count)
	if len(targets) == 0 {
		targets, err = ingest.LoadTargets("input/targets.csv", *count)
		if err != nil {
			logger.Error("No keywords given and input/targets.csv unreadable", "err", err)
			return 1
		}
	}
	if len(targets) == 0 {
		logger.Error("No valid keywords to collect")
		return 1
	}

	// 3. Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize Client (Using Factory)
	artifacts := storage.Artifacts{Dir: cfg.OutputDir}
	factoryCfg := collector.Config{
		Mode:         cfg.Mode,
		Options:      opts,
		Reddit:       cfg.Reddit,
		Confirmer:    collector.NewPromptConfirmer(os.Stdin, os.Stdout),
		Placeholders: cfg.Placeholders,
		Logger:       logger,
		Launch: func(ctx context.Context) (collector.Page, func(), error) {
			return browser.Launch(ctx, browser.Options{
				Headless:    cfg.Headless,
				ChromePath:  cfg.ChromePath,
				UserDataDir: cfg.UserDataDir,
				Logger:      logger,
			})
		},
	}
	if cfg.DebugDumps {
		factoryCfg.Dumper = artifacts
	}
	client, release, err := collector.NewCollector(ctx, factoryCfg)
	if err != nil {
		logger.Error("Failed to initialize collector", "error", err)
		return 1
	}
	defer release()
	logger.Info("Collector initialized", "mode", cfg.Mode, "targets", len(targets))

	var archive *storage.MongoArchive
	if cfg.MongoURI != "" {
		archive, err = storage.NewMongoArchive(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("Archive disabled", "err", err)
		} else {
			defer archive.Close(context.Background())
		}
	}

	// 5. Journal writer
	if err := storage.EnsureDir(cfg.OutputDir); err != nil {
		logger.Error("Output dir unavailable", "err", err)
		return 1
	}
	journal := make(chan runEntry, len(targets)*4)
	var writerWg sync.WaitGroup
	writer := &storage.WriterService[runEntry]{FilePath: filepath.Join(cfg.OutputDir, "runs.ndjson"), Logger: logger}
	writerWg.Add(1)
	go writer.Start(&writerWg, journal)

	// 6. Collect, one keyword at a time over the single browser session
	failed := false
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		var posts []domain.CollectedPost
		if *expand {
			posts = collectExpanded(ctx, client, t, archive, journal, logger)
		} else {
			run, err := client.Collect(ctx, t)
			record(ctx, run, t, err, archive, journal, logger)
			if run != nil {
				posts = run.Posts
			}
			if err != nil && run == nil {
				failed = true
				continue
			}
		}
		txt, js, err := artifacts.WriteRun(t.Keyword, posts)
		if err != nil {
			logger.Error("Write artifacts failed", "keyword", t.Keyword, "err", err)
			failed = true
			continue
		}
		logger.Info("Keyword saved", "keyword", t.Keyword, "posts", len(posts), "txt", txt, "json", js)
	}

	close(journal)
	writerWg.Wait()
	if ctx.Err() != nil {
		logger.Info("Interrupted, partial results saved")
	}
	logger.Info("Scrape complete. Data saved.", "dir", cfg.OutputDir)
	if failed {
		return 1
	}
	return 0
}

func flagTargets(keywords string, count int) []domain.Target {
	var targets []domain.Target
	seen := make(map[string]bool)
	for _, kw := range strings.Split(keywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		targets = append(targets, domain.Target{Keyword: kw, Count: count})
	}
	return targets
}

// collectExpanded searches t.Keyword and its related keywords until
// t.Count distinct posts are found, renumbering them in discovery order.
func collectExpanded(ctx context.Context, client domain.Collector, t domain.Target, archive *storage.MongoArchive, journal chan<- runEntry, logger *slog.Logger) []domain.CollectedPost {
	var merged []domain.CollectedPost
	seen := make(map[string]bool)
	for _, variant := range ingest.RelatedKeywords(t.Keyword) {
		remaining := t.Count - len(merged)
		if remaining <= 0 || ctx.Err() != nil {
			break
		}
		vt := domain.Target{Keyword: variant, Count: remaining}
		run, err := client.Collect(ctx, vt)
		record(ctx, run, vt, err, archive, journal, logger)
		if run == nil {
			continue
		}
		for _, p := range run.Posts {
			if p.Placeholder || seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			p.Index = len(merged) + 1
			merged = append(merged, p)
		}
		logger.Info("Variant collected", "keyword", t.Keyword, "variant", variant, "collected", len(merged), "target", t.Count)
	}
	return merged
}

func record(ctx context.Context, run *domain.Run, t domain.Target, err error, archive *storage.MongoArchive, journal chan<- runEntry, logger *slog.Logger) {
	entry := runEntry{Keyword: t.Keyword, Target: t.Count}
	if err != nil {
		entry.Error = err.Error()
		if !errors.Is(err, context.Canceled) {
			logger.Error("Collection failed", "keyword", t.Keyword, "err", err)
		}
	}
	if run != nil {
		entry.RunID = run.ID
		entry.State = string(run.State)
		entry.Collected = len(run.Posts)
		entry.Rounds = run.Rounds
		entry.StartedAt = run.StartedAt
		entry.FinishedAt = run.FinishedAt
		if archive != nil {
			// The run context may be cancelled; archive what we have anyway.
			if err := archive.SaveRun(context.WithoutCancel(ctx), run); err != nil {
				logger.Warn("Archive failed", "run_id", run.ID, "err", err)
			}
		}
	}
	journal <- entry
}
