package zeroshot

import (
	"context"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// Consumers should depend on the smallest interface that meets their needs.

// Classifier scores candidate labels against text.
type Classifier interface {
	// Classify parses a comma separated label string and classifies text.
	Classify(ctx context.Context, text, rawLabels string, allowMultiLabel bool) (*types.ClassificationResult, error)

	// ClassifyRequest classifies a validated request.
	ClassifyRequest(ctx context.Context, req types.ClassificationRequest) (*types.ClassificationResult, error)

	// DefaultMultiLabel reports the mode used when a caller does not pick one.
	DefaultMultiLabel() bool
}

// ProviderLister exposes the configured provider order for diagnostics.
type ProviderLister interface {
	// Providers returns the provider order, keyword fallback last.
	Providers() []types.ProviderID
}

// ZeroShot is the full client surface.
type ZeroShot interface {
	Classifier
	ProviderLister

	// Close releases provider resources.
	Close() error
}

var _ ZeroShot = (*Client)(nil)
