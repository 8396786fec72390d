package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly on Sleep. onSleep, when set, runs after
// every sleep with the duration slept.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  int
	onSleep func(d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps++
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sleeps
}

func TestSettlerWait_StableSignal(t *testing.T) {
	clock := newFakeClock()
	s := Settler{Clock: clock, Interval: 500 * time.Millisecond, Samples: 3}

	err := s.Wait(context.Background(), 10*time.Second, func(context.Context) (int, error) { return 1200, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, clock.Sleeps(), "three equal samples need two intervals")
}

func TestSettlerWait_GivesUpAtDeadline(t *testing.T) {
	clock := newFakeClock()
	s := Settler{Clock: clock, Interval: time.Second, Samples: 3}
	start := clock.Now()

	h := 0
	err := s.Wait(context.Background(), 5*time.Second, func(context.Context) (int, error) {
		h += 100
		return h, nil
	})
	require.NoError(t, err, "an unsettled page is not an error")
	assert.Equal(t, 5*time.Second, clock.Now().Sub(start))
}

func TestSettlerWait_SettlesAfterGrowthStops(t *testing.T) {
	clock := newFakeClock()
	s := Settler{Clock: clock, Interval: time.Second, Samples: 2}

	heights := []int{900, 1200, 1500, 1500}
	i := 0
	err := s.Wait(context.Background(), time.Minute, func(context.Context) (int, error) {
		v := heights[min(i, len(heights)-1)]
		i++
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, i)
}

func TestSettlerWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Settler{Clock: newFakeClock(), Interval: time.Second, Samples: 3}

	err := s.Wait(ctx, time.Minute, func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSettlerUntil(t *testing.T) {
	clock := newFakeClock()
	s := Settler{Clock: clock, Interval: 500 * time.Millisecond}

	calls := 0
	ok, err := s.Until(context.Background(), 10*time.Second, func(context.Context) bool {
		calls++
		return calls == 4
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, clock.Sleeps())

	ok, err = s.Until(context.Background(), 2*time.Second, func(context.Context) bool { return false })
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettlerPause_StaysInRange(t *testing.T) {
	clock := newFakeClock()
	s := Settler{Clock: clock}
	rng := newTestRand()

	for range 20 {
		before := clock.Now()
		require.NoError(t, s.Pause(context.Background(), rng, 2*time.Second, 4*time.Second))
		slept := clock.Now().Sub(before)
		assert.GreaterOrEqual(t, slept, 2*time.Second)
		assert.LessOrEqual(t, slept, 4*time.Second)
	}
}
