package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client spaces requests to respect the service's rate limit and retries
// failures with exponential backoff.
type Client struct {
	provider Provider
	limiter  *rate.Limiter
	attempts int
	initial  time.Duration
	logger   *slog.Logger
}

type ClientOption func(*Client)

// WithInterval sets the minimum spacing between requests. Zero disables limiting.
func WithInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry sets the attempt cap and the first backoff interval.
func WithRetry(attempts int, initial time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.initial = initial
	}
}

func WithLogger(l *slog.Logger) ClientOption { return func(c *Client) { c.logger = l } }

func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: p,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		attempts: 3,
		initial:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Complete sends prompt and returns the trimmed answer. The error after the
// last attempt is the one returned.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if c.provider == nil {
		return "", ErrNoProvider
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initial
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.attempts-1)), ctx)

	attempt := 0
	var out string
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		text, err := c.provider.Complete(ctx, Request{Prompt: prompt, Temperature: temperature})
		if err == nil && text == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			if errors.Is(err, ErrNoProvider) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			c.logger.Warn("LLM call failed", "attempt", attempt, "max", c.attempts, "err", err)
			return err
		}
		out = text
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return out, nil
}
