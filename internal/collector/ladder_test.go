package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStrategy struct {
	name   string
	result bool
	calls  *[]string
}

func (s scriptedStrategy) Name() string { return s.name }

func (s scriptedStrategy) Attempt(context.Context, *Scroller, int) bool {
	*s.calls = append(*s.calls, s.name)
	return s.result
}

func newTestScroller(page *SimulatedPage) *Scroller {
	opts := DefaultOptions()
	return &Scroller{
		Page:     page,
		Detector: NewDetector(opts, nil),
		Settler:  Settler{Clock: newFakeClock(), Interval: opts.SettleInterval, Samples: opts.SettleSamples},
		Rand:     newTestRand(),
		Logger:   discardLogger(),
	}
}

func loadedPage(t *testing.T, posts int, batch int) *SimulatedPage {
	t.Helper()
	page := NewSimulatedPage(testPosts(posts), SimBatch(batch))
	require.NoError(t, page.Navigate(context.Background(), "https://www.xiaohongshu.com/search_result?keyword=test"))
	return page
}

func TestLadder_StopsAtFirstSuccess(t *testing.T) {
	var calls []string
	l := &Ladder{Logger: discardLogger(), Strategies: []ScrollStrategy{
		scriptedStrategy{"a", false, &calls},
		scriptedStrategy{"b", true, &calls},
		scriptedStrategy{"c", true, &calls},
	}}

	name, ok := l.Climb(context.Background(), nil, 0)

	assert.True(t, ok)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestLadder_AllFail(t *testing.T) {
	var calls []string
	l := &Ladder{Logger: discardLogger(), Strategies: []ScrollStrategy{
		scriptedStrategy{"a", false, &calls},
		scriptedStrategy{"b", false, &calls},
	}}

	_, ok := l.Climb(context.Background(), nil, 0)

	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestLadder_CancelledBeforeClimb(t *testing.T) {
	var calls []string
	l := &Ladder{Logger: discardLogger(), Strategies: []ScrollStrategy{scriptedStrategy{"a", true, &calls}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := l.Climb(ctx, nil, 0)

	assert.False(t, ok)
	assert.Empty(t, calls)
}

func TestDefaultLadder_RevealsNextBatch(t *testing.T) {
	page := loadedPage(t, 12, 4)
	s := newTestScroller(page)

	name, ok := DefaultLadder(discardLogger()).Climb(context.Background(), s, 4)

	require.True(t, ok)
	assert.Equal(t, "jump_to_bottom", name)
	assert.Equal(t, 8, page.Revealed())
}

func TestDefaultLadder_ExhaustedList(t *testing.T) {
	page := loadedPage(t, 5, 5)
	s := newTestScroller(page)

	_, ok := DefaultLadder(discardLogger()).Climb(context.Background(), s, 5)

	assert.False(t, ok)
	assert.Positive(t, page.Hovers(), "the last strategy hovers cards like a person would")
}

func TestStrategies_EachRevealsMore(t *testing.T) {
	for _, strategy := range DefaultLadder(discardLogger()).Strategies {
		t.Run(strategy.Name(), func(t *testing.T) {
			page := loadedPage(t, 20, 5)
			assert.True(t, strategy.Attempt(context.Background(), newTestScroller(page), 5))
			assert.Greater(t, page.Revealed(), 5)
		})
	}
}
