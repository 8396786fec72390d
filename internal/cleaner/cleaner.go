// Package cleaner keeps the scenic posts of a scrape and extracts their
// promotional fields with a language model.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/ingest"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// Completer is the slice of llm.Client the cleaner needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

const temperature = 0.1

// Status of one post in the journal.
const (
	StatusKept     = "kept"
	StatusFiltered = "filtered"
	StatusEmpty    = "empty"
)

// JournalEntry records what happened to one post.
type JournalEntry struct {
	Time     time.Time     `json:"time"`
	Category string        `json:"category"`
	File     string        `json:"file"`
	ID       domain.PostID `json:"id"`
	Status   string        `json:"status"`
	Detail   string        `json:"detail,omitempty"`
}

// Summary is written to cleaning_summary.json.
type Summary struct {
	Files      int            `json:"总处理文件数"`
	Cleaned    int            `json:"总清洗文案数"`
	ByCategory map[string]int `json:"各类别统计"`
	FinishedAt string         `json:"处理时间"`
}

type Cleaner struct {
	llm     Completer
	workers int
	journal chan<- JournalEntry
	logger  *slog.Logger
}

func New(llm Completer, workers int, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{llm: llm, workers: max(workers, 1), logger: logger}
}

// IsScenic asks whether text promotes a scenic or travel offer. When the
// model cannot be reached the post is kept.
func (c *Cleaner) IsScenic(ctx context.Context, text string) bool {
	answer, err := c.llm.Complete(ctx, render(filterPrompt, map[string]string{"text": truncate(text, maxPromptRunes)}), temperature)
	if err != nil {
		c.logger.Error("Scenic filter failed, keeping post", "err", err)
		return true
	}
	return affirmative(answer)
}

// affirmative reads a 是/否 answer. A negation anywhere wins unless the
// answer opens with 是.
func affirmative(answer string) bool {
	a := strings.Trim(strings.TrimSpace(answer), "\"'“”「」*`")
	switch {
	case strings.HasPrefix(a, "是"):
		return true
	case strings.Contains(a, "否"), strings.Contains(a, "不是"):
		return false
	default:
		return strings.Contains(a, "是")
	}
}

// Extract returns the promotional fields of text, or defaults when the
// model fails or answers with something that is not JSON.
func (c *Cleaner) Extract(ctx context.Context, text string) domain.PostFields {
	answer, err := c.llm.Complete(ctx, render(extractPrompt, map[string]string{"text": truncate(text, maxPromptRunes)}), temperature)
	if err != nil {
		c.logger.Error("Field extraction failed", "err", err)
		return DefaultFields(text)
	}
	fields, err := ParseFields(answer)
	if err != nil {
		c.logger.Warn("Extraction answer not JSON, using defaults", "err", err)
		return DefaultFields(text)
	}
	if fields.CharCount == 0 {
		fields.CharCount = DefaultFields(text).CharCount
	}
	return fields
}

// Process filters and extracts one post; rec is only set when status is StatusKept.
func (c *Cleaner) Process(ctx context.Context, post domain.RawPost) (rec domain.CleanedRecord, status string) {
	text := strings.TrimSpace(post.Text)
	if text == "" {
		return rec, StatusEmpty
	}
	if !c.IsScenic(ctx, text) {
		c.logger.Info("Post filtered, not scenic", "id", post.ID)
		return rec, StatusFiltered
	}
	return domain.CleanedRecord{ID: post.ID, OriginalText: post.Text, PostFields: c.Extract(ctx, text)}, StatusKept
}

// ProcessFile cleans every post of one input file, keeping input order.
func (c *Cleaner) ProcessFile(ctx context.Context, category, path string) []domain.CleanedRecord {
	posts, err := ingest.LoadRawPosts(path)
	if err != nil {
		c.logger.Error("Read input failed", "file", path, "err", err)
		return nil
	}
	c.logger.Info("Processing file", "file", path, "posts", len(posts), "workers", c.workers)

	type job struct {
		i    int
		post domain.RawPost
	}
	jobs := make(chan job, len(posts))
	kept := make([]*domain.CleanedRecord, len(posts))
	var wg sync.WaitGroup

	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				rec, status := c.Process(ctx, j.post)
				c.record(category, path, j.post.ID, status)
				if status == StatusKept {
					kept[j.i] = &rec
				}
			}
		}()
	}
	for i, p := range posts {
		jobs <- job{i: i, post: p}
	}
	close(jobs)
	wg.Wait()

	var out []domain.CleanedRecord
	for _, r := range kept {
		if r != nil {
			out = append(out, *r)
		}
	}
	c.logger.Info("File processed", "file", path, "kept", len(out), "total", len(posts))
	return out
}

func (c *Cleaner) record(category, path string, id domain.PostID, status string) {
	if c.journal == nil {
		return
	}
	c.journal <- JournalEntry{Time: time.Now(), Category: category, File: filepath.Base(path), ID: id, Status: status}
}

// CleanAll processes every input under dataDir and writes one
// <category>_cleaned.json per category plus cleaning_summary.json to outDir.
// Progress is journaled as NDJSON to outDir/cleaning_journal.ndjson.
func (c *Cleaner) CleanAll(ctx context.Context, dataDir, outDir string) (*Summary, error) {
	inputs, err := ingest.FindInputs(dataDir)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Inputs found", "files", inputs.Files(), "categories", len(inputs))

	journal := make(chan JournalEntry, 100)
	var writerWg sync.WaitGroup
	if err := storage.EnsureDir(outDir); err != nil {
		return nil, err
	}
	writer := &storage.WriterService[JournalEntry]{FilePath: filepath.Join(outDir, "cleaning_journal.ndjson"), Logger: c.logger}
	writerWg.Add(1)
	go writer.Start(&writerWg, journal)
	c.journal = journal
	defer func() {
		c.journal = nil
		close(journal)
		writerWg.Wait()
	}()

	summary := &Summary{Files: inputs.Files(), ByCategory: make(map[string]int)}
	for _, category := range inputs.Categories() {
		var records []domain.CleanedRecord
		for _, file := range inputs[category] {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			records = append(records, c.ProcessFile(ctx, category, file)...)
		}
		summary.ByCategory[category] = len(records)
		if len(records) == 0 {
			continue
		}
		out := filepath.Join(outDir, category+"_cleaned.json")
		if err := storage.WriteJSON(out, records); err != nil {
			return summary, err
		}
		summary.Cleaned += len(records)
		c.logger.Info("Category saved", "category", category, "records", len(records), "file", out)
	}

	summary.FinishedAt = time.Now().Format(time.RFC3339)
	if err := storage.WriteJSON(filepath.Join(outDir, "cleaning_summary.json"), summary); err != nil {
		return summary, fmt.Errorf("write summary: %w", err)
	}
	return summary, nil
}
