package ingest

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/qepting91/promo-scraper/internal/domain"
)

const maxKeywordRunes = 50

// LoadTargets reads keyword,count rows. Rows without a usable count get
// defaultCount; malformed rows are skipped.
func LoadTargets(path string, defaultCount int) ([]domain.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Wrap in BOM stripper
	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1

	var targets []domain.Target
	seen := make(map[string]bool)
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		line++
		if line == 1 {
			continue // Skip header
		}

		// Validation (Fail-Soft)
		kw := strings.TrimSpace(record[0])
		if !validKeyword(kw) || seen[kw] {
			continue
		}
		count := defaultCount
		if len(record) > 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(record[1])); err == nil && n > 0 {
				count = n
			}
		}
		if count <= 0 {
			continue
		}
		seen[kw] = true
		targets = append(targets, domain.Target{Keyword: kw, Count: count})
	}
	return targets, nil
}

func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1
	var kws []string
	seen := make(map[string]bool)
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err == nil && line > 0 && len(rec) > 0 {
			kw := strings.TrimSpace(rec[0])
			if validKeyword(kw) && !seen[kw] {
				seen[kw] = true
				kws = append(kws, kw)
			}
		}
		line++
	}
	return kws, nil
}

func validKeyword(kw string) bool {
	return kw != "" && utf8.RuneCountInString(kw) <= maxKeywordRunes && !strings.HasPrefix(kw, "#")
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
