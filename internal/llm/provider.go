// Package llm wraps the text-generation backends used for open-ended replies.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// ErrAllProvidersFailed is returned by Chain when every provider failed.
var ErrAllProvidersFailed = errors.New("llm: all providers failed")

// Provider generates text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderError ties a failure to the provider that produced it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm: %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Options shared by provider implementations.
const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)
