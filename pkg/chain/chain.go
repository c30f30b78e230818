// Package chain runs classification providers in priority order and falls
// back to the keyword heuristic when none of them succeeds.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/zeroshot/pkg/keyword"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/normalizer"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/soundprediction/zeroshot/pkg/utils"
)

// DefaultAttemptTimeout bounds a single provider attempt. Hosted models can
// take tens of seconds on a cold start.
const DefaultAttemptTimeout = 60 * time.Second

// Config holds configuration for the chain
type Config struct {
	// AttemptTimeout bounds each provider attempt (default: 60 seconds)
	AttemptTimeout time.Duration
	// Fallback replaces the keyword provider as the last resort.
	Fallback nlp.Provider
}

// Client tries model-backed providers in order and never fails for a valid
// request: when every provider fails the keyword fallback answers.
type Client struct {
	providers      []nlp.Provider
	fallback       nlp.Provider
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewClient creates a chain over providers, highest priority first. An empty
// list is valid and classifies with the keyword fallback only.
func NewClient(providers []nlp.Provider, config *Config, logger *slog.Logger) *Client {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := config.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	fallback := config.Fallback
	if fallback == nil {
		fallback = keyword.NewProvider()
	}

	return &Client{
		providers:      append([]nlp.Provider(nil), providers...),
		fallback:       fallback,
		attemptTimeout: timeout,
		logger:         logger,
	}
}

// Classify returns the first successful provider's normalized result. Failed
// and skipped providers are logged and listed in the result's Failures. The
// only error for a well-formed request is a failing fallback; a malformed
// request yields nlp.ErrInvalidInput before any provider is touched.
func (c *Client) Classify(ctx context.Context, req types.ClassificationRequest) (*types.ClassificationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", nlp.ErrInvalidInput, err)
	}

	requestID, _ := ctx.Value(types.ContextKeyRequestID).(string)
	logger := c.logger.With("request_id", requestID)

	var failures []types.ProviderFailure
	for _, p := range c.providers {
		if !nlp.IsAvailable(ctx, p) {
			failures = c.recordFailure(logger, failures, p.ID(), fmt.Errorf("skipped: %w", nlp.ErrAuthMissing))
			continue
		}

		res, err := c.attempt(ctx, p, req)
		if err != nil {
			failures = c.recordFailure(logger, failures, p.ID(), err)
			continue
		}

		res.RequestID = requestID
		res.Failures = failures
		logger.Debug("classification succeeded", "provider", p.ID(), "failed_providers", len(failures))
		return res, nil
	}

	res, err := c.runFallback(ctx, req)
	if err != nil {
		return nil, err
	}
	res.RequestID = requestID
	res.Failures = failures
	if len(c.providers) > 0 {
		logger.Warn("all model providers failed, using keyword fallback", "attempted", len(c.providers))
	}
	return res, nil
}

// attempt runs one provider under the per-attempt deadline. The call runs in
// its own goroutine so a provider that ignores ctx, such as a native model,
// still cannot hold the chain past the deadline.
func (c *Client) attempt(ctx context.Context, p nlp.Provider, req types.ClassificationRequest) (*types.ClassificationResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	type outcome struct {
		raw json.RawMessage
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		raw, err := utils.CallSafely(func() (json.RawMessage, error) {
			return p.Classify(attemptCtx, req)
		})
		done <- outcome{raw: raw, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-attemptCtx.Done():
		return nil, &nlp.TimeoutError{Err: fmt.Errorf("%s: %w", p.ID(), attemptCtx.Err())}
	}

	if out.err != nil {
		if errors.Is(out.err, context.DeadlineExceeded) && !errors.Is(out.err, &nlp.TimeoutError{}) {
			return nil, &nlp.TimeoutError{Err: out.err}
		}
		return nil, out.err
	}

	return normalizer.Normalize(out.raw, p.ID())
}

func (c *Client) runFallback(ctx context.Context, req types.ClassificationRequest) (*types.ClassificationResult, error) {
	raw, err := utils.CallSafely(func() (json.RawMessage, error) {
		return c.fallback.Classify(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("keyword fallback failed: %w", err)
	}

	res, err := normalizer.Normalize(raw, types.KeywordFallback)
	if err != nil {
		return nil, fmt.Errorf("keyword fallback failed: %w", err)
	}
	return res, nil
}

func (c *Client) recordFailure(logger *slog.Logger, failures []types.ProviderFailure, id types.ProviderID, err error) []types.ProviderFailure {
	kind := nlp.ErrorKind(err)
	logger.Warn("provider failed, trying next", "provider", id, "kind", kind, "error", err)
	return append(failures, types.ProviderFailure{
		Provider: id,
		Kind:     kind,
		Message:  err.Error(),
	})
}

// Providers returns the provider order, fallback last.
func (c *Client) Providers() []types.ProviderID {
	ids := make([]types.ProviderID, 0, len(c.providers)+1)
	for _, p := range c.providers {
		ids = append(ids, p.ID())
	}
	return append(ids, c.fallback.ID())
}

// Close closes all providers
func (c *Client) Close() error {
	var errs []string
	all := make([]nlp.Provider, 0, len(c.providers)+1)
	all = append(all, c.providers...)
	for _, p := range append(all, c.fallback) {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p.ID(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %s", strings.Join(errs, "; "))
	}
	return nil
}
