package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
)

const separator = "=================================================="

// TextRecord is one entry of the <keyword>_texts.json artifact.
type TextRecord struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Artifacts writes the per-keyword output files into Dir.
type Artifacts struct {
	Dir string
}

// SafeName turns a keyword into something usable as a file name.
func SafeName(keyword string) string {
	r := strings.NewReplacer("/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_")
	name := strings.TrimSpace(r.Replace(keyword))
	if name == "" {
		return "untitled"
	}
	return name
}

// WriteRun writes the transcript and the JSON list for a keyword.
func (a Artifacts) WriteRun(keyword string, posts []domain.CollectedPost) (txtPath, jsonPath string, err error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}
	base := SafeName(keyword)

	var txt bytes.Buffer
	records := make([]TextRecord, 0, len(posts))
	for _, p := range posts {
		fmt.Fprintf(&txt, "========== 帖子 %d ==========\n", p.Index)
		txt.WriteString(p.Text)
		txt.WriteString("\n\n" + separator + "\n\n")
		records = append(records, TextRecord{ID: p.Index, Text: p.Text, Placeholder: p.Placeholder})
	}

	txtPath = filepath.Join(a.Dir, base+"_texts.txt")
	if err := os.WriteFile(txtPath, txt.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("write transcript: %w", err)
	}
	jsonPath = filepath.Join(a.Dir, base+"_texts.json")
	if err := WriteJSON(jsonPath, records); err != nil {
		return "", "", err
	}
	return txtPath, jsonPath, nil
}

// DumpPost writes debug_post_<keyword>_<index>.txt with the page it came
// from. Indices restart with every run, so the keyword keeps dumps of
// different runs in one directory apart.
func (a Artifacts) DumpPost(keyword string, index int, url, title, text string) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return err
	}
	body := fmt.Sprintf("URL: %s\nTitle: %s\n%s\n%s", url, title, separator, text)
	return os.WriteFile(filepath.Join(a.Dir, fmt.Sprintf("debug_post_%s_%d.txt", SafeName(keyword), index)), []byte(body), 0o644)
}

// WriteJSON writes v as indented JSON without escaping HTML characters.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
