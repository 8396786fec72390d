package collector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/qepting91/promo-scraper/internal/domain"
)

// PostDumper keeps a copy of each raw extraction for inspection.
type PostDumper interface {
	DumpPost(keyword string, index int, url, title, text string) error
}

// RoundOutcome summarises one pass over the cards currently on the page.
type RoundOutcome struct {
	CardsSeen  int
	Skipped    int // preview already handled in an earlier round
	Attempted  int
	Failed     int
	Duplicates int
	Novel      int
}

// NewContent reports whether the round added at least one post.
func (o RoundOutcome) NewContent() bool { return o.Novel > 0 }

// BrowserCollector drives the results page of one browser session.
// A collector is not safe for concurrent use; runs share the page.
type BrowserCollector struct {
	page         Page
	opts         Options
	clock        Clock
	rng          *rand.Rand
	confirmer    Confirmer
	dumper       PostDumper
	placeholders bool
	ladder       *Ladder
	logger       *slog.Logger
}

type Option func(*BrowserCollector)

func WithClock(c Clock) Option { return func(b *BrowserCollector) { b.clock = c } }

func WithRand(r *rand.Rand) Option { return func(b *BrowserCollector) { b.rng = r } }

func WithConfirmer(c Confirmer) Option { return func(b *BrowserCollector) { b.confirmer = c } }

func WithDumper(d PostDumper) Option { return func(b *BrowserCollector) { b.dumper = d } }

// WithPlaceholders makes a run that collected nothing return labelled sample posts.
func WithPlaceholders(on bool) Option { return func(b *BrowserCollector) { b.placeholders = on } }

func WithLadder(l *Ladder) Option { return func(b *BrowserCollector) { b.ladder = l } }

func WithLogger(l *slog.Logger) Option { return func(b *BrowserCollector) { b.logger = l } }

func NewBrowserCollector(page Page, opts Options, options ...Option) *BrowserCollector {
	b := &BrowserCollector{page: page, opts: opts}
	for _, o := range options {
		o(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.clock == nil {
		b.clock = realClock{}
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if b.ladder == nil {
		b.ladder = DefaultLadder(b.logger)
	}
	return b
}

// run is the state owned by a single Collect call.
type run struct {
	*domain.Run
	ledger    *Ledger
	nextIndex int
	log       *slog.Logger
}

// Collect gathers up to target.Count posts for target.Keyword.
// Running out of cards is a normal end: the run comes back in StateExhausted
// with whatever was found. An error means the search could not start or the
// context was cancelled; in the latter case the partial run is returned too.
func (b *BrowserCollector) Collect(ctx context.Context, target domain.Target) (*domain.Run, error) {
	if target.Count <= 0 {
		return nil, fmt.Errorf("target count for %q must be positive, got %d", target.Keyword, target.Count)
	}
	settler := Settler{Clock: b.clock, Interval: b.opts.SettleInterval, Samples: b.opts.SettleSamples}
	detector := NewDetector(b.opts, b.logger)
	extractor := NewExtractor(b.opts, settler, b.logger)
	scroller := &Scroller{Page: b.page, Detector: detector, Settler: settler, Rand: b.rng, Logger: b.logger}

	r := &run{
		Run: &domain.Run{
			ID:        uuid.NewString(),
			Keyword:   target.Keyword,
			Target:    target.Count,
			StartedAt: b.clock.Now(),
		},
		ledger:    NewLedger(),
		nextIndex: 1,
	}
	r.log = b.logger.With("keyword", target.Keyword, "run_id", r.ID)

	if err := b.search(ctx, settler, target.Keyword, r.log); err != nil {
		return nil, err
	}

	exhausted := 0
	state := domain.StateDone
	for len(r.Posts) < target.Count {
		r.Rounds++
		outcome := b.extractRound(ctx, detector, extractor, settler, r)
		r.ledger.Commit()
		r.log.Info("Round finished",
			"round", r.Rounds, "cards", outcome.CardsSeen, "novel", outcome.Novel,
			"failed", outcome.Failed, "duplicates", outcome.Duplicates,
			"collected", len(r.Posts), "target", target.Count)

		if err := ctx.Err(); err != nil {
			return b.finish(r, domain.StateInterrupted), err
		}
		if len(r.Posts) >= target.Count {
			break
		}
		if outcome.NewContent() {
			continue
		}

		if r.ScrollRounds >= b.opts.MaxScrollRounds {
			r.log.Info("Scroll round cap reached", "scroll_rounds", r.ScrollRounds)
			state = domain.StateExhausted
			break
		}
		r.ScrollRounds++
		baseline := detector.Count(ctx, b.page)
		if name, ok := b.ladder.Climb(ctx, scroller, baseline); ok {
			r.log.Info("New cards revealed", "strategy", name, "scroll_round", r.ScrollRounds)
			exhausted = 0
			continue
		}
		if err := ctx.Err(); err != nil {
			return b.finish(r, domain.StateInterrupted), err
		}
		exhausted++
		r.ExhaustedRounds++
		r.log.Info("Every scroll strategy failed", "streak", exhausted, "limit", b.opts.ExhaustedLimit)
		if exhausted >= b.opts.ExhaustedLimit {
			state = domain.StateExhausted
			break
		}
	}
	return b.finish(r, state), nil
}

func (b *BrowserCollector) finish(r *run, state domain.RunState) *domain.Run {
	r.State = state
	r.FinishedAt = b.clock.Now()
	if len(r.Posts) == 0 && b.placeholders && state != domain.StateInterrupted {
		r.log.Warn("No posts collected, writing placeholder posts")
		r.Posts = Placeholders(r.Keyword, r.FinishedAt)
	}
	r.log.Info("Collection finished", "state", string(state), "collected", len(r.Posts),
		"rounds", r.Rounds, "scroll_rounds", r.ScrollRounds)
	return r.Run
}

// search opens the home page, checks the login and loads the results view.
func (b *BrowserCollector) search(ctx context.Context, settler Settler, keyword string, log *slog.Logger) error {
	session := &Session{
		Settler:   settler,
		Confirmer: b.confirmer,
		Poll:      b.opts.LoginPoll,
		Timeout:   b.opts.LoginTimeout,
		Unknown:   b.opts.UnknownAuth,
		Logger:    log,
	}

	if b.opts.WaitLogin {
		if err := b.page.Navigate(ctx, b.opts.HomeURL); err != nil {
			return fmt.Errorf("open home page: %w", err)
		}
		if err := settler.Wait(ctx, b.opts.SearchSettle, b.page.ScrollHeight); err != nil {
			return err
		}
		if err := session.Ensure(ctx, b.page); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	searchURL := fmt.Sprintf(b.opts.SearchURL, url.QueryEscape(keyword))
	log.Info("Loading search results", "url", searchURL)
	if err := b.loadSearch(ctx, settler, searchURL); err != nil {
		return err
	}

	// The results view can still bounce to the login page.
	if b.opts.WaitLogin {
		loc, _ := b.page.Location(ctx)
		title, _ := b.page.Title(ctx)
		if isLoginURL(loc) || isLoginTitle(title) {
			if err := session.WaitForLogin(ctx, b.page); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			return b.loadSearch(ctx, settler, searchURL)
		}
	}
	return nil
}

func (b *BrowserCollector) loadSearch(ctx context.Context, settler Settler, searchURL string) error {
	if err := b.page.Navigate(ctx, searchURL); err != nil {
		return fmt.Errorf("open search page: %w", err)
	}
	return settler.Wait(ctx, b.opts.SearchSettle, b.page.ScrollHeight)
}

// extractRound visits every card whose preview no earlier round handled.
func (b *BrowserCollector) extractRound(ctx context.Context, detector *Detector, extractor *Extractor, settler Settler, r *run) RoundOutcome {
	cards := detector.Detect(ctx, b.page)
	out := RoundOutcome{CardsSeen: len(cards)}

	for _, card := range cards {
		if len(r.Posts) >= r.Target || ctx.Err() != nil {
			break
		}
		previewFP := PreviewFingerprint(card.Text, b.opts.PreviewRunes)
		if !r.ledger.IsNovel(previewFP) || !r.ledger.IsNovelURL(card.URL) {
			out.Skipped++
			continue
		}

		if err := b.page.ScrollIntoView(ctx, card.Selector, card.Index); err != nil {
			r.log.Debug("Scroll card into view failed", "card", card.Index, "err", err)
		}
		out.Attempted++
		ex, ok := extractor.Extract(ctx, b.page, card)
		if !ok {
			out.Failed++
			r.ledger.MarkAttempted(previewFP)
			continue
		}

		postURL := ex.URL
		if postURL == "" {
			postURL = card.URL
		}
		contentFP := ContentFingerprint(ex.Text)
		if !b.novel(r.ledger, postURL, contentFP) {
			out.Duplicates++
			r.ledger.MarkAttempted(previewFP)
			r.log.Debug("Duplicate post", "url", postURL)
			continue
		}

		index := r.nextIndex
		r.nextIndex++
		if postURL == "" {
			postURL = syntheticID(index, contentFP)
		}
		r.ledger.Record(previewFP, contentFP, postURL, card.URL)
		r.Posts = append(r.Posts, domain.CollectedPost{
			Index:       index,
			URL:         postURL,
			Text:        ex.Text,
			CollectedAt: b.clock.Now(),
		})
		out.Novel++
		r.log.Info("Post collected", "id", index, "url", postURL, "source", ex.Source,
			"collected", len(r.Posts), "target", r.Target)

		if b.dumper != nil {
			if err := b.dumper.DumpPost(r.Keyword, index, postURL, ex.Title, ex.Text); err != nil {
				r.log.Warn("Debug dump failed", "id", index, "err", err)
			}
		}
		if every := b.opts.MicroScrollEvery; every > 0 && len(r.Posts)%every == 0 {
			b.microScroll(ctx, settler)
		}
		if err := settler.Pause(ctx, b.rng, b.opts.PauseMin, b.opts.PauseMax); err != nil {
			break
		}
	}
	return out
}

// novel treats the URL as the identity of a post when there is one and
// falls back to the content fingerprint otherwise.
func (b *BrowserCollector) novel(l *Ledger, postURL, contentFP string) bool {
	if postURL != "" {
		return l.IsNovelURL(postURL)
	}
	return l.IsNovelContent(contentFP)
}

// microScroll nudges the list to keep lazy loading alive during long rounds.
func (b *BrowserCollector) microScroll(ctx context.Context, settler Settler) {
	if err := b.page.ScrollBy(ctx, 100); err != nil {
		return
	}
	_ = settler.Clock.Sleep(ctx, 500*time.Millisecond)
	_ = b.page.ScrollBy(ctx, -50)
	_ = settler.Clock.Sleep(ctx, 500*time.Millisecond)
}

func syntheticID(index int, contentFP string) string {
	if len(contentFP) > 8 {
		contentFP = contentFP[:8]
	}
	return fmt.Sprintf("post_%d_%s", index, contentFP)
}
