package collector

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qepting91/promo-scraper/internal/domain"
)

// Detector finds the post cards currently present on a page.
type Detector struct {
	selectors    []string
	minText      int
	signatureLen int
	postURL      *regexp.Regexp
	logger       *slog.Logger
}

func NewDetector(opts Options, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		selectors:    opts.CardSelectors,
		minText:      opts.MinCardText,
		signatureLen: opts.SignatureLen,
		postURL:      opts.postPattern(),
		logger:       logger,
	}
}

// Detect runs every selector strategy and keeps the one that yields the most
// valid cards, not the first that matches. Off-screen cards count.
// A page without valid cards yields nil.
func (d *Detector) Detect(ctx context.Context, doc Document) []domain.Card {
	var best []domain.Card
	bestSelector := ""
	for _, sel := range d.selectors {
		els, err := doc.Query(ctx, sel)
		if err != nil {
			d.logger.Debug("Card query failed", "selector", sel, "err", err)
			continue
		}
		cards := d.validCards(els)
		if len(cards) > len(best) {
			best, bestSelector = cards, sel
		}
	}

	visible := 0
	for _, c := range best {
		if c.Visible {
			visible++
		}
	}
	d.logger.Debug("Cards detected", "selector", bestSelector, "cards", len(best), "visible", visible)
	return best
}

// Count is Detect reduced to its cardinality, the signal scroll strategies compare.
func (d *Detector) Count(ctx context.Context, doc Document) int {
	return len(d.Detect(ctx, doc))
}

func (d *Detector) validCards(els []Element) []domain.Card {
	signatures := make(map[string]bool, len(els))
	links := make(map[string]bool, len(els))
	var cards []domain.Card
	for _, el := range els {
		text := strings.TrimSpace(el.Text)
		if utf8.RuneCountInString(text) <= d.minText {
			continue
		}
		link := d.postLink(el)
		if link == "" {
			continue
		}
		// Nested matches of one card share either markup or the post link.
		sig := signature(el, d.signatureLen)
		if signatures[sig] || links[link] {
			continue
		}
		signatures[sig], links[link] = true, true
		cards = append(cards, domain.Card{
			Text:      text,
			URL:       link,
			Visible:   el.Visible,
			Selector:  el.Selector,
			Index:     el.Index,
			Signature: sig,
		})
	}
	return cards
}

// postLink returns the element's own post link, else its first descendant one.
func (d *Detector) postLink(el Element) string {
	if el.Href != "" && d.postURL.MatchString(el.Href) {
		return el.Href
	}
	for _, href := range el.Links {
		if d.postURL.MatchString(href) {
			return href
		}
	}
	return ""
}

func signature(el Element, n int) string {
	markup := el.Markup
	if markup == "" {
		markup = el.Text
	}
	if n > 0 && len(markup) > n {
		markup = markup[:n]
	}
	return markup
}
