package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 2)
	MaxRetries int
	// InitialDelay is the initial delay before the first retry (default: 1 second)
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 10 seconds)
	MaxDelay time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff (default: 2.0)
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryProvider wraps a Provider and adds retry logic with exponential backoff
type RetryProvider struct {
	provider Provider
	config   *RetryConfig
}

// NewRetryProvider creates a new retry wrapper
func NewRetryProvider(provider Provider, config *RetryConfig) *RetryProvider {
	if config == nil {
		config = DefaultRetryConfig()
	}
	// Ensure sensible defaults
	if config.MaxRetries < 0 {
		config.MaxRetries = 2
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 10 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}

	return &RetryProvider{
		provider: provider,
		config:   config,
	}
}

// ID implements Provider
func (r *RetryProvider) ID() types.ProviderID {
	return r.provider.ID()
}

// Available implements Availability by delegating to the wrapped provider
func (r *RetryProvider) Available(ctx context.Context) bool {
	return IsAvailable(ctx, r.provider)
}

// Classify implements the Provider interface with retry logic
func (r *RetryProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateDelay(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &TimeoutError{Err: fmt.Errorf("context done during retry backoff: %w", ctx.Err())}
			}
		}

		raw, err := r.provider.Classify(ctx, req)
		if err == nil {
			return raw, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

// Close implements the Provider interface
func (r *RetryProvider) Close() error {
	return r.provider.Close()
}

// calculateDelay calculates the delay for a given retry attempt using exponential backoff
func (r *RetryProvider) calculateDelay(attempt int) time.Duration {
	// InitialDelay * (BackoffMultiplier ^ (attempt - 1))
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	return time.Duration(delay)
}

// isRetryableError determines if an error is retryable
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Never retry failures that another attempt cannot fix
	if errors.Is(err, ErrAuthMissing) || errors.Is(err, ErrResponseShape) || errors.Is(err, ErrInvalidInput) {
		return false
	}
	// The deadline is shared by all attempts
	if errors.Is(err, &TimeoutError{}) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, &NetworkError{}) {
		return true
	}

	type httpErrorWithStatusCode interface {
		HTTPStatusCode() int
	}

	var httpErr httpErrorWithStatusCode
	if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() != 0 {
		statusCode := httpErr.HTTPStatusCode()
		// Retry on 5xx (including 503 while a hosted model loads) and 429
		return statusCode >= 500 || statusCode == http.StatusTooManyRequests
	}

	errMsg := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"500", "internal server error",
		"502", "bad gateway",
		"503", "service unavailable",
		"504", "gateway timeout",
		"currently loading",
		"connection reset",
		"connection refused",
		"temporary failure",
		"rate limit",
		"too many requests",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
