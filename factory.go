package zeroshot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/zeroshot/pkg/alert"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/inference"
	"github.com/soundprediction/zeroshot/pkg/nli"
	"github.com/soundprediction/zeroshot/pkg/nlp"
)

// NewClientFromConfig builds the provider chain described by cfg.
// Providers are created in classifier.providers order and wrapped, innermost
// first, with retry (remote only), a circuit breaker and attempt tracking as
// configured. Models are not loaded until the first classification.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var tracker *nlp.ParquetAttemptTracker
	if cfg.Telemetry.AttemptsPath != "" {
		t, err := nlp.NewAttemptTracker(cfg.Telemetry.AttemptsPath, logger)
		if err != nil {
			return nil, err
		}
		tracker = t
	}

	var alerter alert.Alerter = &alert.LogAlerter{Logger: logger}
	if cfg.Alert.Enabled {
		alerter = alert.New(cfg.Alert)
	}

	providers := make([]nlp.Provider, 0, len(cfg.Classifier.Providers))
	for _, name := range cfg.Classifier.Providers {
		p, err := newProvider(strings.ToLower(strings.TrimSpace(name)), cfg, logger)
		if err != nil {
			for _, built := range providers {
				_ = built.Close()
			}
			return nil, err
		}

		if cfg.CircuitBreaker.Enabled {
			p = nlp.NewCircuitBreakerProvider(p, cfg.CircuitBreaker, alerter, logger)
		}
		if tracker != nil {
			p = nlp.NewTrackingProvider(p, tracker)
		}
		providers = append(providers, p)
	}

	logger.Debug("classification providers configured", "providers", cfg.Classifier.Providers)

	return NewClient(providers, &Config{
		AttemptTimeout:    time.Duration(cfg.Classifier.AttemptTimeout) * time.Second,
		DefaultMultiLabel: cfg.Classifier.DefaultMultiLabel,
		Tracker:           tracker,
	}, logger)
}

func newProvider(name string, cfg *config.Config, logger *slog.Logger) (nlp.Provider, error) {
	switch name {
	case config.ProviderLocal:
		return nli.NewLocalProvider(&nli.Config{
			Backend:            cfg.Local.Backend,
			Model:              cfg.Local.Model,
			ModelDir:           cfg.Local.ModelDir,
			HypothesisTemplate: cfg.Local.HypothesisTemplate,
			Accelerated:        cfg.Local.Accelerated,
		}, logger), nil

	case config.ProviderRemote:
		var p nlp.Provider = inference.NewRemoteProvider(&inference.Config{
			BaseURL:  cfg.Remote.BaseURL,
			Model:    cfg.Remote.Model,
			APIToken: cfg.Remote.APIToken,
			Timeout:  time.Duration(cfg.Remote.Timeout) * time.Second,
		}, logger)
		if cfg.Retry.Enabled {
			p = nlp.NewRetryProvider(p, &nlp.RetryConfig{
				MaxRetries:        cfg.Retry.MaxRetries,
				InitialDelay:      time.Duration(cfg.Retry.InitialDelayMs) * time.Millisecond,
				MaxDelay:          time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
				BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			})
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown provider %q (expected %q or %q)", name, config.ProviderLocal, config.ProviderRemote)
	}
}
