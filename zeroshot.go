package zeroshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/zeroshot/pkg/chain"
	"github.com/soundprediction/zeroshot/pkg/labels"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/soundprediction/zeroshot/pkg/utils"
)

// Config holds configuration for the classification client
type Config struct {
	// AttemptTimeout bounds each provider attempt (default: 60 seconds)
	AttemptTimeout time.Duration
	// DefaultMultiLabel is the mode used by callers that do not choose one.
	DefaultMultiLabel bool
	// Tracker, when set, is flushed on Close.
	Tracker *nlp.ParquetAttemptTracker
}

// NewDefaultConfig returns the configuration used when NewClient gets nil.
func NewDefaultConfig() *Config {
	return &Config{
		AttemptTimeout:    chain.DefaultAttemptTimeout,
		DefaultMultiLabel: true,
	}
}

// Client is the entry point for zero-shot classification.
type Client struct {
	chain  *chain.Client
	config *Config
	logger *slog.Logger
}

// NewClient creates a client over providers, highest priority first. The
// keyword fallback is appended automatically, so an empty list is valid.
func NewClient(providers []nlp.Provider, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider %d is nil", i)
		}
	}

	return &Client{
		chain:  chain.NewClient(providers, &chain.Config{AttemptTimeout: config.AttemptTimeout}, logger),
		config: config,
		logger: logger,
	}, nil
}

// Classify parses a comma separated label string and classifies text against
// it. The only error a caller should expect is nlp.ErrInvalidInput, returned
// for blank text or a label string with no usable labels.
func (c *Client) Classify(ctx context.Context, text, rawLabels string, allowMultiLabel bool) (*types.ClassificationResult, error) {
	req, err := types.NewClassificationRequest(text, labels.Parse(rawLabels), allowMultiLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nlp.ErrInvalidInput, err)
	}
	return c.ClassifyRequest(ctx, req)
}

// ClassifyRequest classifies a pre-built request. A request ID is generated
// when ctx does not carry one.
func (c *Client) ClassifyRequest(ctx context.Context, req types.ClassificationRequest) (*types.ClassificationResult, error) {
	if id, _ := ctx.Value(types.ContextKeyRequestID).(string); id == "" {
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, uuid.New().String())
	}
	return c.chain.Classify(ctx, req)
}

// ClassifyBatch classifies each text against the same labels, running up to
// concurrency requests at once. Every text is an independent request with its
// own request ID. The returned slices are in input order; an invalid label
// string fails the whole batch before any provider is called.
func (c *Client) ClassifyBatch(ctx context.Context, texts []string, rawLabels string, allowMultiLabel bool, concurrency int) ([]*types.ClassificationResult, []error, error) {
	set := labels.Parse(rawLabels)
	if len(set) == 0 {
		return nil, nil, fmt.Errorf("%w: %w", nlp.ErrInvalidInput, types.ErrEmptyLabels)
	}

	pool := utils.NewWorkerPool(concurrency, func(ctx context.Context, text string) (*types.ClassificationResult, error) {
		req, err := types.NewClassificationRequest(text, set, allowMultiLabel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", nlp.ErrInvalidInput, err)
		}
		// Request IDs are per text, never shared across the batch.
		return c.ClassifyRequest(context.WithValue(ctx, types.ContextKeyRequestID, uuid.New().String()), req)
	})

	results, errs := pool.Process(ctx, texts)
	return results, errs, nil
}

// DefaultMultiLabel reports the configured default classification mode.
func (c *Client) DefaultMultiLabel() bool {
	return c.config.DefaultMultiLabel
}

// Providers returns the provider order, keyword fallback last.
func (c *Client) Providers() []types.ProviderID {
	return c.chain.Providers()
}

// Close releases provider resources and flushes attempt records.
func (c *Client) Close() error {
	var errs []error
	if err := c.chain.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.config.Tracker != nil {
		if err := c.config.Tracker.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush attempt records: %w", err))
		}
	}
	return errors.Join(errs...)
}
