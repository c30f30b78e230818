package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/zeroshot/pkg/alert"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// CircuitBreakerProvider wraps a Provider with circuit breaking logic
type CircuitBreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
	alerter  alert.Alerter
	logger   *slog.Logger
}

// NewCircuitBreakerProvider creates a new circuit breaker provider
func NewCircuitBreakerProvider(provider Provider, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) *CircuitBreakerProvider {
	if alerter == nil {
		alerter = &alert.NoOpAlerter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ratio := cfg.ReadyToTripRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	c := &CircuitBreakerProvider{
		provider: provider,
		alerter:  alerter,
		logger:   logger,
	}

	st := gobreaker.Settings{
		Name:        string(provider.ID()),
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
		// Auth and shape failures say nothing about the endpoint's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAuthMissing) || errors.Is(err, ErrResponseShape)
		},
		OnStateChange: c.onStateChange,
	}
	c.cb = gobreaker.NewCircuitBreaker(st)

	return c
}

func (c *CircuitBreakerProvider) onStateChange(name string, from gobreaker.State, to gobreaker.State) {
	c.logger.Warn("circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
	if to != gobreaker.StateOpen {
		return
	}
	msg := fmt.Sprintf("Circuit breaker '%s' changed status from %s to %s. Too many failures detected.", name, from, to)
	if err := c.alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg); err != nil {
		c.logger.Error("failed to send circuit breaker alert", "provider", name, "error", err)
	}
}

// ID implements Provider
func (c *CircuitBreakerProvider) ID() types.ProviderID {
	return c.provider.ID()
}

// Available implements Availability by delegating to the wrapped provider
func (c *CircuitBreakerProvider) Available(ctx context.Context) bool {
	return IsAvailable(ctx, c.provider)
}

// State returns the breaker's current state.
func (c *CircuitBreakerProvider) State() gobreaker.State {
	return c.cb.State()
}

// Classify implements Provider
func (c *CircuitBreakerProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.provider.Classify(ctx, req)
	})

	if err != nil {
		return nil, err
	}
	return resp.(json.RawMessage), nil
}

// Close implements Provider
func (c *CircuitBreakerProvider) Close() error {
	return c.provider.Close()
}
