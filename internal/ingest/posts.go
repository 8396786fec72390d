package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// GeneralCategory holds inputs that sit directly in the data directory.
const GeneralCategory = "general"

// Inputs groups raw post files by category, the first directory level
// below the data directory.
type Inputs map[string][]string

// Categories returns the category names in sorted order.
func (in Inputs) Categories() []string {
	cats := make([]string, 0, len(in))
	for c := range in {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Files returns the total number of input files.
func (in Inputs) Files() int {
	n := 0
	for _, files := range in {
		n += len(files)
	}
	return n
}

// FindInputs walks dataDir for *.json lists and debug_post_*.txt dumps.
func FindInputs(dataDir string) (Inputs, error) {
	in := make(Inputs)
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		isJSON := strings.HasSuffix(name, ".json")
		isDump := strings.HasPrefix(name, "debug_post_") && strings.HasSuffix(name, ".txt")
		if !isJSON && !isDump {
			return nil
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		category := GeneralCategory
		if parts := strings.Split(filepath.ToSlash(rel), "/"); len(parts) > 1 {
			category = parts[0]
		}
		in[category] = append(in[category], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dataDir, err)
	}
	for _, files := range in {
		sort.Strings(files)
	}
	return in, nil
}

// LoadRawPosts reads one input file: a JSON array of {id, text} or a debug dump.
func LoadRawPosts(path string) ([]domain.RawPost, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		var posts []domain.RawPost
		if err := storage.ReadJSON(path, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	case strings.HasSuffix(path, ".txt"):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text := DumpBody(string(data))
		if text == "" {
			return nil, nil
		}
		return []domain.RawPost{{ID: domain.PostID(filepath.Base(path)), Text: text}}, nil
	default:
		return nil, fmt.Errorf("unsupported input %s", filepath.Base(path))
	}
}

// DumpBody strips the URL/Title header and separator from a debug dump.
func DumpBody(dump string) string {
	var lines []string
	for _, line := range strings.Split(dump, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "URL:") || strings.HasPrefix(line, "Title:") || isSeparator(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func isSeparator(line string) bool {
	return len(line) == 50 && strings.Trim(line, "=") == ""
}
