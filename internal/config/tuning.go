package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qepting91/promo-scraper/internal/collector"
)

// Tuning is the optional YAML file of engine knobs. Zero values keep the
// built-in defaults.
type Tuning struct {
	Selectors struct {
		Cards   []string `yaml:"cards"`
		Content []string `yaml:"content"`
		PostURL string   `yaml:"post_url"`
	} `yaml:"selectors"`

	Thresholds struct {
		MinCardText      int `yaml:"min_card_text"`
		MinContentText   int `yaml:"min_content_text"`
		PreviewRunes     int `yaml:"preview_runes"`
		MaxScrollRounds  int `yaml:"max_scroll_rounds"`
		ExhaustedLimit   int `yaml:"exhausted_limit"`
		MicroScrollEvery int `yaml:"micro_scroll_every"`
	} `yaml:"thresholds"`

	Waits struct {
		SearchSettle   time.Duration `yaml:"search_settle"`
		DetailTimeout  time.Duration `yaml:"detail_timeout"`
		SettleInterval time.Duration `yaml:"settle_interval"`
		SettleSamples  int           `yaml:"settle_samples"`
		PauseMin       time.Duration `yaml:"pause_min"`
		PauseMax       time.Duration `yaml:"pause_max"`
		LoginPoll      time.Duration `yaml:"login_poll"`
		LoginTimeout   time.Duration `yaml:"login_timeout"`
	} `yaml:"waits"`
}

// LoadTuning parses the tuning file at path. An empty path or a missing
// file yields an empty Tuning (not an error). Returns error if the file
// exists but cannot be parsed.
func LoadTuning(path string) (*Tuning, error) {
	t := &Tuning{}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return t, nil
}

// Apply overlays the non-zero values onto opts.
func (t *Tuning) Apply(opts *collector.Options) {
	if len(t.Selectors.Cards) > 0 {
		opts.CardSelectors = t.Selectors.Cards
	}
	if len(t.Selectors.Content) > 0 {
		opts.ContentSelectors = t.Selectors.Content
	}
	setString(&opts.PostURLPattern, t.Selectors.PostURL)

	setInt(&opts.MinCardText, t.Thresholds.MinCardText)
	setInt(&opts.MinContentText, t.Thresholds.MinContentText)
	setInt(&opts.PreviewRunes, t.Thresholds.PreviewRunes)
	setInt(&opts.MaxScrollRounds, t.Thresholds.MaxScrollRounds)
	setInt(&opts.ExhaustedLimit, t.Thresholds.ExhaustedLimit)
	setInt(&opts.MicroScrollEvery, t.Thresholds.MicroScrollEvery)

	setDuration(&opts.SearchSettle, t.Waits.SearchSettle)
	setDuration(&opts.DetailTimeout, t.Waits.DetailTimeout)
	setDuration(&opts.SettleInterval, t.Waits.SettleInterval)
	setInt(&opts.SettleSamples, t.Waits.SettleSamples)
	setDuration(&opts.PauseMin, t.Waits.PauseMin)
	setDuration(&opts.PauseMax, t.Waits.PauseMax)
	setDuration(&opts.LoginPoll, t.Waits.LoginPoll)
	setDuration(&opts.LoginTimeout, t.Waits.LoginTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
