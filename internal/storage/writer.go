package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// WriterService is the single goroutine that owns an NDJSON journal file;
// workers hand it entries over a channel.
type WriterService[T any] struct {
	FilePath string
	Logger   *slog.Logger
}

func (w *WriterService[T]) Start(wg *sync.WaitGroup, input <-chan T) {
	defer wg.Done()
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Journal unavailable", "path", w.FilePath, "err", err)
		// Drain so senders never block.
		for range input {
		}
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	for entry := range input {
		if err := enc.Encode(entry); err != nil {
			logger.Warn("Journal write failed", "err", err)
		}
	}
}
