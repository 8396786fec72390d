package collector

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Scroller is what scroll strategies act through: the results page, the
// detector that measures progress and the settle policy between moves.
type Scroller struct {
	Page     Page
	Detector *Detector
	Settler  Settler
	Rand     *rand.Rand
	Logger   *slog.Logger
}

// settle waits up to d for the page height to stop changing.
func (s *Scroller) settle(ctx context.Context, d time.Duration) error {
	return s.Settler.Wait(ctx, d, s.Page.ScrollHeight)
}

func (s *Scroller) grew(ctx context.Context, baseline int) bool {
	return s.Detector.Count(ctx, s.Page) > baseline
}

func (s *Scroller) to(ctx context.Context, fraction float64, wait time.Duration) error {
	if err := s.Page.ScrollTo(ctx, fraction); err != nil {
		return err
	}
	return s.settle(ctx, wait)
}

func (s *Scroller) by(ctx context.Context, dy int, wait time.Duration) error {
	if err := s.Page.ScrollBy(ctx, dy); err != nil {
		return err
	}
	return s.settle(ctx, wait)
}

// ScrollStrategy is one way of coaxing the results list into loading more cards.
// Attempt reports whether more cards than baseline are detected afterwards.
type ScrollStrategy interface {
	Name() string
	Attempt(ctx context.Context, s *Scroller, baseline int) bool
}

// Ladder tries strategies in order until one reveals new cards.
type Ladder struct {
	Strategies []ScrollStrategy
	Logger     *slog.Logger
}

// DefaultLadder orders the strategies cheapest first.
func DefaultLadder(logger *slog.Logger) *Ladder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ladder{
		Logger: logger,
		Strategies: []ScrollStrategy{
			jumpToBottom{},
			randomPositions{positions: []float64{0.3, 0.7, 0.5, 0.9, 0.1}},
			bottomBounce{times: 2},
			jumpPositions{positions: []float64{0.25, 0.5, 0.75, 1.0}},
			scrollBurst{steps: []int{1500, 1500, toBottom, -800, toBottom}},
			realisticUser{rounds: 10, minStep: 200, maxStep: 600, minPause: 1500 * time.Millisecond, maxPause: 3500 * time.Millisecond},
		},
	}
}

// Climb returns the name of the first strategy that revealed new cards,
// or ok=false when every strategy failed and the round is exhausted.
func (l *Ladder) Climb(ctx context.Context, s *Scroller, baseline int) (string, bool) {
	for _, strategy := range l.Strategies {
		if ctx.Err() != nil {
			return "", false
		}
		if strategy.Attempt(ctx, s, baseline) {
			l.Logger.Info("Scroll strategy revealed new cards", "strategy", strategy.Name(), "baseline", baseline)
			return strategy.Name(), true
		}
		l.Logger.Debug("Scroll strategy found nothing", "strategy", strategy.Name())
	}
	return "", false
}

type jumpToBottom struct{}

func (jumpToBottom) Name() string { return "jump_to_bottom" }

func (jumpToBottom) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	if err := s.to(ctx, 1.0, 3*time.Second); err != nil {
		return false
	}
	return s.grew(ctx, baseline)
}

// randomPositions visits the positions in shuffled order.
type randomPositions struct {
	positions []float64
}

func (randomPositions) Name() string { return "random_positions" }

func (r randomPositions) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	order := append([]float64(nil), r.positions...)
	s.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	for _, p := range order {
		if err := s.to(ctx, p, 2*time.Second); err != nil {
			return false
		}
		if s.grew(ctx, baseline) {
			return true
		}
	}
	return false
}

// bottomBounce hits the bottom, backs off and hits it again, which trips
// loaders that only fire on a fresh approach to the end of the list.
type bottomBounce struct {
	times int
}

func (bottomBounce) Name() string { return "bottom_bounce" }

func (b bottomBounce) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	for range b.times {
		if s.to(ctx, 1.0, 2*time.Second) != nil ||
			s.to(ctx, 0.6, time.Second) != nil ||
			s.to(ctx, 1.0, 3*time.Second) != nil {
			return false
		}
		if s.grew(ctx, baseline) {
			return true
		}
	}
	return false
}

type jumpPositions struct {
	positions []float64
}

func (jumpPositions) Name() string { return "jump_positions" }

func (j jumpPositions) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	for _, p := range j.positions {
		if err := s.to(ctx, p, 2*time.Second); err != nil {
			return false
		}
		if s.grew(ctx, baseline) {
			return true
		}
	}
	return false
}

// toBottom in a scrollBurst step means jump to the end instead of scrolling by.
const toBottom = 0

type scrollBurst struct {
	steps []int
}

func (scrollBurst) Name() string { return "scroll_burst" }

func (b scrollBurst) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	for _, dy := range b.steps {
		var err error
		if dy == toBottom {
			err = s.to(ctx, 1.0, 2*time.Second)
		} else {
			err = s.by(ctx, dy, 1500*time.Millisecond)
		}
		if err != nil {
			return false
		}
		if s.grew(ctx, baseline) {
			return true
		}
	}
	return false
}

// realisticUser scrolls in uneven steps with pauses and hovers over cards.
type realisticUser struct {
	rounds             int
	minStep, maxStep   int
	minPause, maxPause time.Duration
}

func (realisticUser) Name() string { return "realistic_user" }

func (r realisticUser) Attempt(ctx context.Context, s *Scroller, baseline int) bool {
	for range r.rounds {
		step := r.minStep
		if r.maxStep > r.minStep {
			step += s.Rand.IntN(r.maxStep - r.minStep + 1)
		}
		if err := s.Page.ScrollBy(ctx, step); err != nil {
			return false
		}
		if err := s.Settler.Pause(ctx, s.Rand, r.minPause, r.maxPause); err != nil {
			return false
		}
		cards := s.Detector.Detect(ctx, s.Page)
		if len(cards) > baseline {
			return true
		}
		if len(cards) > 0 {
			c := cards[s.Rand.IntN(len(cards))]
			if err := s.Page.Hover(ctx, c.Selector, c.Index); err != nil {
				s.Logger.Debug("Hover failed", "err", err)
			}
		}
	}
	return s.grew(ctx, baseline)
}
