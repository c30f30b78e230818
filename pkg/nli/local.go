// Package nli provides the local zero-shot provider. Each label becomes a
// hypothesis that a locally loaded model scores against the text.
//
// Two backends are available. The default "nli" backend runs an NLI model
// through hugot's zero-shot pipeline, which takes the entailment logit named
// by the model's own label map. The "reranker" backend scores hypotheses
// with a single-output go-embedeverything reranker and treats its relevance
// score as a logit.
package nli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/normalizer"
	"github.com/soundprediction/zeroshot/pkg/resource"
	"github.com/soundprediction/zeroshot/pkg/types"
)

const (
	// BackendNLI runs an entailment model through a zero-shot pipeline.
	BackendNLI = "nli"
	// BackendReranker runs a single-output relevance reranker.
	BackendReranker = "reranker"
)

const (
	// DefaultModel is the NLI model loaded when Config.Model is empty.
	DefaultModel = "KnightsAnalytics/deberta-v3-base-zeroshot-v1"
	// DefaultRerankerModel is loaded by the reranker backend when Config.Model
	// is empty.
	DefaultRerankerModel = "BAAI/bge-reranker-base"
)

// Config holds configuration for the local provider
type Config struct {
	// Backend is BackendNLI (default) or BackendReranker
	Backend string
	// Model is a model name or local path; the default depends on Backend
	Model string
	// ModelDir receives downloaded NLI models
	ModelDir string
	// HypothesisTemplate must contain {} (default: "This example is about {}.")
	HypothesisTemplate string
	// Accelerated opts in to GPU execution when one is present
	Accelerated bool
}

// Scorer returns one probability per label, in label order. Single-label
// scores sum to 1; multi-label scores are independent.
type Scorer interface {
	Score(text string, labels []string, multiLabel bool) ([]float64, error)
	Close() error
}

// LocalProvider classifies with a locally loaded model. The model is loaded
// on first use and shared by all later calls.
type LocalProvider struct {
	config *Config
	scorer *resource.Cache[Scorer]
	logger *slog.Logger
}

// NewLocalProvider creates a provider for config.Backend. Nothing is loaded
// until the first Classify.
func NewLocalProvider(config *Config, logger *slog.Logger) *LocalProvider {
	config = withDefaults(config)
	if logger == nil {
		logger = slog.Default()
	}

	return NewLocalProviderWithScorer(config, func() (Scorer, error) {
		return newScorer(config, detectAccelerator, logger)
	}, logger)
}

// NewLocalProviderWithScorer creates a provider with a custom scorer
// constructor. build runs at most once.
func NewLocalProviderWithScorer(config *Config, build func() (Scorer, error), logger *slog.Logger) *LocalProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalProvider{
		config: withDefaults(config),
		scorer: resource.NewCache(build),
		logger: logger,
	}
}

func withDefaults(config *Config) *Config {
	c := Config{}
	if config != nil {
		c = *config
	}
	if c.Backend == "" {
		c.Backend = BackendNLI
	}
	if c.Model == "" {
		c.Model = DefaultModel
		if c.Backend == BackendReranker {
			c.Model = DefaultRerankerModel
		}
	}
	if c.ModelDir == "" {
		c.ModelDir = defaultModelDir()
	}
	if c.HypothesisTemplate == "" {
		c.HypothesisTemplate = DefaultHypothesisTemplate
	}
	return &c
}

func defaultModelDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "zeroshot", "models")
	}
	return filepath.Join(os.TempDir(), "zeroshot", "models")
}

// newScorer loads the model for config.Backend on the device it resolves to.
func newScorer(config *Config, detect func() bool, logger *slog.Logger) (Scorer, error) {
	if config.Backend != BackendNLI && config.Backend != BackendReranker {
		return nil, fmt.Errorf("unknown local backend %q (expected %q or %q)", config.Backend, BackendNLI, BackendReranker)
	}

	device := deviceFor(config.Backend, config.Accelerated, detect, logger)
	logger.Info("loading local model", "backend", config.Backend, "model", config.Model, "device", device)

	if config.Backend == BackendReranker {
		s, err := newRerankScorer(config.Model, config.HypothesisTemplate)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := newZeroShotScorer(config)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ID implements nlp.Provider
func (p *LocalProvider) ID() types.ProviderID {
	return types.PrimaryModel
}

// localPayload is the labels/scores shape, labels in request order.
type localPayload struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify implements nlp.Provider. The payload is validated before it is
// returned, so a malformed model output is reported as this attempt's failure.
func (p *LocalProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &nlp.TimeoutError{Err: err}
	}

	scorer, err := p.scorer.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: local model %s: %w", nlp.ErrProviderUnavailable, p.config.Model, err)
	}

	labels := req.Labels()
	scores, err := scorer.Score(req.Text(), labels, req.AllowMultiLabel())
	if err != nil {
		return nil, fmt.Errorf("local model scoring failed: %w", err)
	}
	if len(scores) != len(labels) {
		return nil, nlp.NewResponseShapeError("local model returned %d scores for %d labels", len(scores), len(labels))
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, nlp.NewResponseShapeError("local model returned score %v for label %q", s, labels[i])
		}
	}

	raw, err := json.Marshal(localPayload{
		Sequence: req.Text(),
		Labels:   labels,
		Scores:   scores,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode local scores: %w", err)
	}
	if err := normalizer.Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Close releases the model if it was loaded
func (p *LocalProvider) Close() error {
	return p.scorer.Close()
}
