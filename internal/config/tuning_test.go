package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/collector"
)

func writeTuning(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuning_Missing(t *testing.T) {
	tun, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, &Tuning{}, tun)

	tun, err = LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Tuning{}, tun)
}

func TestLoadTuning_Invalid(t *testing.T) {
	_, err := LoadTuning(writeTuning(t, "thresholds: [unclosed"))
	assert.ErrorContains(t, err, "parse tuning file")
}

func TestTuningApply(t *testing.T) {
	tun, err := LoadTuning(writeTuning(t, `
selectors:
  cards: ["div.feeds-page section"]
  post_url: "/discovery/item/"
thresholds:
  min_card_text: 5
  exhausted_limit: 5
waits:
  search_settle: 3s
  pause_min: 500ms
  pause_max: 1s
  settle_samples: 4
`))
	require.NoError(t, err)

	opts := collector.DefaultOptions()
	defaults := collector.DefaultOptions()
	tun.Apply(&opts)

	assert.Equal(t, []string{"div.feeds-page section"}, opts.CardSelectors)
	assert.Equal(t, defaults.ContentSelectors, opts.ContentSelectors)
	assert.Equal(t, "/discovery/item/", opts.PostURLPattern)
	assert.Equal(t, 5, opts.MinCardText)
	assert.Equal(t, 5, opts.ExhaustedLimit)
	assert.Equal(t, defaults.MaxScrollRounds, opts.MaxScrollRounds)
	assert.Equal(t, 3*time.Second, opts.SearchSettle)
	assert.Equal(t, 500*time.Millisecond, opts.PauseMin)
	assert.Equal(t, time.Second, opts.PauseMax)
	assert.Equal(t, 4, opts.SettleSamples)
	assert.Equal(t, defaults.LoginTimeout, opts.LoginTimeout)
}
