// Package llm wraps a text-completion service behind a rate limited,
// retrying client.
package llm

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when no completion service is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty completion")

// Request is a single-turn completion request.
type Request struct {
	Prompt      string
	Temperature float32
}

// Provider sends one request to a completion service.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
