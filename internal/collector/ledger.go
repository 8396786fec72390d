package collector

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PreviewFingerprint identifies a card from its preview text without navigating.
func PreviewFingerprint(text string, runes int) string {
	text = strings.TrimSpace(text)
	if runes > 0 {
		r := []rune(text)
		if len(r) > runes {
			text = string(r[:runes])
		}
	}
	return digest(text)
}

// ContentFingerprint identifies an extracted post body.
func ContentFingerprint(text string) string {
	return digest(strings.TrimSpace(text))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}

// Ledger is the per-run record of what has been seen. It only grows.
//
// Preview fingerprints recorded during a round are staged and become
// visible to IsNovel when the round is committed, so two cards sharing a
// preview in the same round are both extracted and told apart by URL and
// content.
type Ledger struct {
	previews map[string]bool
	staged   map[string]bool
	contents map[string]bool
	urls     map[string]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		previews: make(map[string]bool),
		staged:   make(map[string]bool),
		contents: make(map[string]bool),
		urls:     make(map[string]bool),
	}
}

// IsNovel reports whether no earlier round has handled this preview.
func (l *Ledger) IsNovel(previewFP string) bool {
	return !l.previews[previewFP]
}

func (l *Ledger) IsNovelURL(url string) bool {
	return url == "" || !l.urls[url]
}

func (l *Ledger) IsNovelContent(contentFP string) bool {
	return !l.contents[contentFP]
}

// Record stores a collected post under every URL it is known by.
// Empty URLs are skipped.
func (l *Ledger) Record(previewFP, contentFP string, urls ...string) {
	l.staged[previewFP] = true
	l.contents[contentFP] = true
	for _, u := range urls {
		if u != "" {
			l.urls[u] = true
		}
	}
}

// MarkAttempted stages a preview whose extraction failed or turned out to be
// a duplicate, so later rounds do not spend another navigation on it.
func (l *Ledger) MarkAttempted(previewFP string) {
	l.staged[previewFP] = true
}

// Commit ends a round.
func (l *Ledger) Commit() {
	for fp := range l.staged {
		l.previews[fp] = true
	}
	clear(l.staged)
}

// Size is the number of distinct posts recorded.
func (l *Ledger) Size() int {
	return len(l.contents)
}
