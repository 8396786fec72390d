package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/domain"
)

func TestPagedRun(t *testing.T) {
	r := newPagedRun(domain.Target{Keyword: "diving", Count: 2})
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	r.add(redditURL("/r/travel/comments/1/"), joinTitle("Dive trip", "Two dives"), created)
	r.add(redditURL("https://www.reddit.com/r/travel/comments/1/"), "same url again", created)
	r.add(redditURL("/r/travel/comments/2/"), "   ", created)
	r.add(redditURL("/r/travel/comments/3/"), joinTitle("Snorkel", ""), time.Time{})
	r.add(redditURL("/r/travel/comments/4/"), "over target", created)

	run := r.finish(domain.StateExhausted)

	assert.Equal(t, domain.StateDone, run.State, "reaching the target is done even when paging ran out")
	require.Len(t, run.Posts, 2)
	assert.Equal(t, "Dive trip\n\nTwo dives", run.Posts[0].Text)
	assert.Equal(t, created, run.Posts[0].CollectedAt)
	assert.Equal(t, "Snorkel", run.Posts[1].Text)
	assert.Equal(t, 2, run.Posts[1].Index)
	assert.False(t, run.Posts[1].CollectedAt.IsZero())
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.FinishedAt.IsZero())
}

func TestPagedRun_ShortOfTarget(t *testing.T) {
	r := newPagedRun(domain.Target{Keyword: "diving", Count: 5})
	r.add("https://www.reddit.com/r/x/comments/1/", "only one", time.Now())

	assert.Equal(t, domain.StateExhausted, r.finish(domain.StateExhausted).State)
}
