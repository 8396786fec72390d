// Package config reads the environment (.env included) and the optional
// YAML tuning file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/qepting91/promo-scraper/internal/collector"
	"github.com/qepting91/promo-scraper/internal/llm"
)

// Config is everything the commands read from the environment.
type Config struct {
	Mode      collector.Mode
	OutputDir string

	Headless    bool
	ChromePath  string
	UserDataDir string
	WaitLogin   bool
	AuthUnknown collector.AuthPolicy

	Placeholders bool
	DebugDumps   bool

	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMInterval    time.Duration
	CleanerWorkers int

	MongoURI string
	MongoDB  string

	Reddit collector.RedditCredentials

	Port       string
	TuningFile string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Mode:        collector.Mode(strings.ToLower(env("COLLECTOR_MODE", string(collector.ModeBrowser)))),
		OutputDir:   env("OUTPUT_DIR", "output"),
		ChromePath:  os.Getenv("CHROME_PATH"),
		UserDataDir: os.Getenv("USER_DATA_DIR"),
		AuthUnknown: collector.AuthPolicy(strings.ToLower(env("AUTH_UNKNOWN", string(collector.AssumeAuthenticated)))),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMModel:    env("LLM_MODEL", "gpt-4o-mini"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDB:     env("MONGO_DB", "promo_scraper"),
		Reddit: collector.RedditCredentials{
			ID:        os.Getenv("REDDIT_CLIENT_ID"),
			Secret:    os.Getenv("REDDIT_CLIENT_SECRET"),
			Username:  os.Getenv("REDDIT_USERNAME"),
			Password:  os.Getenv("REDDIT_PASSWORD"),
			UserAgent: os.Getenv("REDDIT_USER_AGENT"),
			Subreddit: os.Getenv("REDDIT_SUBREDDIT"),
		},
		Port:       env("PORT", "8080"),
		TuningFile: os.Getenv("TUNING_FILE"),
	}

	var err error
	if cfg.Headless, err = boolEnv("HEADLESS", false); err != nil {
		return nil, err
	}
	if cfg.WaitLogin, err = boolEnv("WAIT_LOGIN", true); err != nil {
		return nil, err
	}
	if cfg.Placeholders, err = boolEnv("PLACEHOLDERS", false); err != nil {
		return nil, err
	}
	if cfg.DebugDumps, err = boolEnv("DEBUG_DUMPS", false); err != nil {
		return nil, err
	}
	if cfg.LLMInterval, err = durationEnv("LLM_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.CleanerWorkers, err = intEnv("CLEANER_WORKERS", 1); err != nil {
		return nil, err
	}

	switch cfg.AuthUnknown {
	case collector.AssumeAuthenticated, collector.FailClosed:
	default:
		return nil, fmt.Errorf("AUTH_UNKNOWN must be %q or %q, got %q", collector.AssumeAuthenticated, collector.FailClosed, cfg.AuthUnknown)
	}
	return cfg, nil
}

// CollectorOptions returns the engine options with the environment and
// the tuning file applied over the defaults.
func (c *Config) CollectorOptions() (collector.Options, error) {
	opts := collector.DefaultOptions()
	opts.WaitLogin = c.WaitLogin
	opts.UnknownAuth = c.AuthUnknown
	tuning, err := LoadTuning(c.TuningFile)
	if err != nil {
		return opts, err
	}
	tuning.Apply(&opts)
	return opts, nil
}

// LLMClient builds the rate-limited completion client. Without an API key
// it returns llm.ErrNoProvider.
func (c *Config) LLMClient(logger *slog.Logger) (*llm.Client, error) {
	provider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:  c.LLMAPIKey,
		BaseURL: c.LLMBaseURL,
		Model:   c.LLMModel,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider, llm.WithInterval(c.LLMInterval), llm.WithLogger(logger)), nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// durationEnv accepts Go durations ("1500ms") or plain seconds ("2").
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
