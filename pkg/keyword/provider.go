package keyword

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// payload mirrors the labels/scores shape hosted endpoints return.
type payload struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Provider exposes Score as an nlp.Provider tagged KeywordFallback.
type Provider struct{}

// NewProvider returns the keyword fallback provider.
func NewProvider() *Provider {
	return &Provider{}
}

// ID implements nlp.Provider
func (p *Provider) ID() types.ProviderID {
	return types.KeywordFallback
}

// Classify implements nlp.Provider. AllowMultiLabel has no effect on keyword
// scores.
func (p *Provider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	scored := Score(req.Text(), req.Labels())

	out := payload{
		Sequence: req.Text(),
		Labels:   make([]string, len(scored)),
		Scores:   make([]float64, len(scored)),
	}
	for i, s := range scored {
		out.Labels[i] = s.Label
		out.Scores[i] = s.Score
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keyword scores: %w", err)
	}
	return raw, nil
}

// Close implements nlp.Provider
func (p *Provider) Close() error {
	return nil
}
