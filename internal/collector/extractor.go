package collector

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/qepting91/promo-scraper/internal/domain"
)

// Extraction is the text pulled from one post detail page.
type Extraction struct {
	URL    string // final tab location, empty when it never reached a detail page
	Title  string
	Text   string
	Source string // which stage produced Text: selector, page or readability
}

// Extractor reads post bodies in a throwaway tab.
type Extractor struct {
	contentSelectors []string
	minContent       int
	detailTimeout    time.Duration
	postURL          *regexp.Regexp
	settler          Settler
	logger           *slog.Logger
}

func NewExtractor(opts Options, settler Settler, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		contentSelectors: opts.ContentSelectors,
		minContent:       opts.MinContentText,
		detailTimeout:    opts.DetailTimeout,
		postURL:          opts.postPattern(),
		settler:          settler,
		logger:           logger,
	}
}

// Extract opens card.URL in a new tab and returns its body text.
// Failures are logged and reported as ok=false. The tab is always closed
// before Extract returns, so the page's own context is left as it was.
func (e *Extractor) Extract(ctx context.Context, page Page, card domain.Card) (ex Extraction, ok bool) {
	log := e.logger.With("card", card.Index, "url", card.URL)
	if card.URL == "" {
		log.Debug("Card has no link")
		return ex, false
	}

	tab, err := page.OpenTab(ctx)
	if err != nil {
		log.Warn("Open tab failed", "err", err)
		return ex, false
	}
	defer func() {
		if err := tab.Close(); err != nil {
			log.Warn("Close tab failed", "err", err)
		}
	}()

	if err := tab.Navigate(ctx, card.URL); err != nil {
		log.Warn("Navigation failed", "err", err)
		return ex, false
	}

	var location string
	reached, err := e.settler.Until(ctx, e.detailTimeout, func(ctx context.Context) bool {
		loc, err := tab.Location(ctx)
		if err != nil {
			return false
		}
		location = loc
		return e.postURL.MatchString(loc)
	})
	if err != nil || !reached {
		log.Warn("Detail page not reached", "location", location, "err", err)
		return ex, false
	}
	ex.URL = location
	ex.Title, _ = tab.Title(ctx)

	html, err := tab.HTML(ctx)
	if err != nil {
		log.Warn("Read page failed", "err", err)
		return ex, false
	}

	if text := e.fromSelectors(html); text != "" {
		ex.Text, ex.Source = text, "selector"
		return ex, true
	}
	if body, err := tab.Text(ctx); err == nil {
		if text := FilterChrome(body); text != "" {
			ex.Text, ex.Source = text, "page"
			return ex, true
		}
	}
	if text := fromReadability(html, location); text != "" {
		ex.Text, ex.Source = text, "readability"
		return ex, true
	}
	log.Warn("No content found")
	return ex, false
}

// fromSelectors returns the text of the first content selector that has at
// least one long enough region, regions joined by a blank line.
func (e *Extractor) fromSelectors(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, sel := range e.contentSelectors {
		var parts []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(text) > e.minContent {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}
	return ""
}

// FilterChrome keeps the lines of rendered page text that look like post
// content, dropping navigation labels, links and footer lines.
func FilterChrome(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 5 || chromeLines[line] {
			continue
		}
		if hasAnyPrefix(line, chromePrefixes) || containsAny(line, chromeFragments) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func fromReadability(html, location string) string {
	pageURL, _ := url.Parse(location)
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
