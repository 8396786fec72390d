// Package patterns aggregates promotional patterns from scraped posts and
// generates templated promotional copy from them.
package patterns

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// Output files written by Save.
const (
	PointsFile   = "points_by_category.json"
	SectionsFile = "sections_by_title.json"
	OffersFile   = "special_offers.json"
	AllFile      = "all_promotional_patterns.json"
)

// Fragment is one entry of a post's promotional_text list.
type Fragment struct {
	Type     string `json:"type"` // point, section or special_offer
	Category string `json:"category,omitempty"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
}

type annotatedPost struct {
	PromotionalText []Fragment `json:"promotional_text"`
}

// Add files each fragment under its type.
func Add(p *domain.Patterns, keyword string, frags []Fragment) {
	for _, f := range frags {
		entry := domain.PatternEntry{Content: f.Content, Keyword: keyword}
		switch f.Type {
		case "point":
			p.Points[f.Category] = append(p.Points[f.Category], entry)
		case "section":
			p.Sections[f.Title] = append(p.Sections[f.Title], entry)
		case "special_offer":
			p.SpecialOffers = append(p.SpecialOffers, entry)
		}
	}
}

// Aggregate reads every <keyword>_posts.json in dir and collects the
// promotional_text fragments of their posts. Unreadable files are skipped.
func Aggregate(dir string, logger *slog.Logger) (*domain.Patterns, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}

	p := domain.NewPatterns()
	for _, file := range files {
		keyword := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(file), ".json"), "_posts")
		var posts []annotatedPost
		if err := storage.ReadJSON(file, &posts); err != nil {
			logger.Warn("Skipping unreadable posts file", "file", file, "err", err)
			continue
		}
		for _, post := range posts {
			Add(p, keyword, post.PromotionalText)
		}
	}
	logger.Info("Patterns aggregated", "files", len(files), "points", len(p.Points), "sections", len(p.Sections), "offers", len(p.SpecialOffers))
	return p, nil
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

var offerMarkers = []string{"✨", "优惠", "福利", "折", "立减", "半价", "特价", "限时"}

// FromCleaned derives patterns from <category>_cleaned.json files: prices
// become 价格 points, services 方案 points, product names section titles
// (with the merchant as content), and offer-like lines special offers.
func FromCleaned(dir string, logger *slog.Logger) (*domain.Patterns, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}

	p := domain.NewPatterns()
	for _, file := range files {
		name := filepath.Base(file)
		if !strings.HasSuffix(name, "_cleaned.json") {
			continue
		}
		category := strings.TrimSuffix(name, "_cleaned.json")
		var records []domain.CleanedRecord
		if err := storage.ReadJSON(file, &records); err != nil {
			logger.Warn("Skipping unreadable cleaned file", "file", file, "err", err)
			continue
		}
		for _, r := range records {
			Add(p, category, fragmentsOf(r))
		}
	}
	return p, nil
}

func fragmentsOf(r domain.CleanedRecord) []Fragment {
	var frags []Fragment
	for _, price := range r.Prices {
		if usable(price) {
			frags = append(frags, Fragment{Type: "point", Category: "价格", Content: price})
		}
	}
	var services []string
	for _, s := range r.Services {
		if usable(s) {
			services = append(services, s)
		}
	}
	if len(services) > 0 {
		frags = append(frags, Fragment{Type: "point", Category: "方案", Content: strings.Join(services, "，")})
	}
	if usable(r.ProductName) && r.Merchant != "" {
		frags = append(frags, Fragment{Type: "section", Title: r.ProductName, Content: r.Merchant})
	}
	for _, line := range strings.Split(r.OriginalText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) > 60 {
			continue
		}
		for _, m := range offerMarkers {
			if strings.Contains(line, m) {
				frags = append(frags, Fragment{Type: "special_offer", Content: strings.TrimPrefix(line, "✨")})
				break
			}
		}
	}
	return frags
}

func usable(s string) bool {
	return s != "" && s != "待补充"
}

// Merge appends the entries of src onto dst.
func Merge(dst, src *domain.Patterns) {
	for k, v := range src.Points {
		dst.Points[k] = append(dst.Points[k], v...)
	}
	for k, v := range src.Sections {
		dst.Sections[k] = append(dst.Sections[k], v...)
	}
	dst.SpecialOffers = append(dst.SpecialOffers, src.SpecialOffers...)
}

// Save writes the three per-type files and the combined document to dir.
func Save(dir string, p *domain.Patterns) error {
	if err := storage.EnsureDir(dir); err != nil {
		return err
	}
	for name, v := range map[string]any{
		PointsFile:   p.Points,
		SectionsFile: p.Sections,
		OffersFile:   p.SpecialOffers,
		AllFile:      p,
	} {
		if err := storage.WriteJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the combined document. A missing file yields empty patterns,
// so generation falls back to its built-in copy.
func Load(dir string) (*domain.Patterns, error) {
	p := domain.NewPatterns()
	err := storage.ReadJSON(filepath.Join(dir, AllFile), p)
	if os.IsNotExist(err) {
		return domain.NewPatterns(), nil
	}
	if err != nil {
		return nil, err
	}
	if p.Points == nil {
		p.Points = make(map[string][]domain.PatternEntry)
	}
	if p.Sections == nil {
		p.Sections = make(map[string][]domain.PatternEntry)
	}
	return p, nil
}
