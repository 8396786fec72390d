package collector

import (
	"context"
	"math/rand/v2"
	"time"
)

// Clock is the time source for settle waits and pauses.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Settler waits for a page signal to stop changing.
type Settler struct {
	Clock    Clock
	Interval time.Duration
	Samples  int
}

// Wait samples signal every Interval until it reads the same value Samples
// times in a row or maxWait elapses. Running out of time is not an error;
// only context cancellation is.
func (s Settler) Wait(ctx context.Context, maxWait time.Duration, signal func(context.Context) (int, error)) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	samples := max(s.Samples, 1)

	deadline := s.Clock.Now().Add(maxWait)
	last, stable := 0, 0
	for {
		if v, err := signal(ctx); err == nil {
			if stable > 0 && v == last {
				stable++
			} else {
				last, stable = v, 1
			}
			if stable >= samples {
				return nil
			}
		}
		if !s.Clock.Now().Before(deadline) {
			return nil
		}
		if err := s.Clock.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// Until polls cond every Interval until it holds or maxWait elapses.
func (s Settler) Until(ctx context.Context, maxWait time.Duration, cond func(context.Context) bool) (bool, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := s.Clock.Now().Add(maxWait)
	for {
		if cond(ctx) {
			return true, nil
		}
		if !s.Clock.Now().Before(deadline) {
			return false, nil
		}
		if err := s.Clock.Sleep(ctx, interval); err != nil {
			return false, err
		}
	}
}

// Pause sleeps for a random duration in [lo, hi].
func (s Settler) Pause(ctx context.Context, rng *rand.Rand, lo, hi time.Duration) error {
	if hi <= lo {
		return s.Clock.Sleep(ctx, lo)
	}
	return s.Clock.Sleep(ctx, lo+time.Duration(rng.Int64N(int64(hi-lo))))
}
