package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// AttemptRecorder observes provider outcomes. Satisfied by the metrics package.
type AttemptRecorder interface {
	ObserveProviderAttempt(provider, outcome string, latency time.Duration)
}

// Chain tries providers strictly in order and returns the first non-empty reply.
// Providers are not retried.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *logging.Logger
	recorder  AttemptRecorder
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.timeout = d }
}

// WithRecorder reports every attempt outcome.
func WithRecorder(r AttemptRecorder) ChainOption {
	return func(c *Chain) { c.recorder = r }
}

// NewChain builds a chain over the non-nil providers.
func NewChain(logger *logging.Logger, providers []Provider, opts ...ChainOption) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Chain{logger: logger}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers lists provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate returns the first successful reply. When every provider fails the
// error wraps ErrAllProvidersFailed and each *ProviderError.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	errs := []error{ErrAllProvidersFailed}
	for _, p := range c.providers {
		text, err := c.call(ctx, p, prompt)
		if err == nil {
			return text, nil
		}
		c.logger.Warn("llm provider failed, trying next", "provider", p.Name(), "error", err)
		errs = append(errs, &ProviderError{Provider: p.Name(), Err: err})
	}
	return "", errors.Join(errs...)
}

func (c *Chain) call(ctx context.Context, p Provider, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	started := time.Now()
	text, err := p.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if c.recorder != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.recorder.ObserveProviderAttempt(p.Name(), outcome, time.Since(started))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
