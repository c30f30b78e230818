package nlp

import (
	"context"
	"encoding/json"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// Provider defines the interface for zero-shot classification backends.
type Provider interface {
	// ID returns the provenance tag attached to results from this provider.
	ID() types.ProviderID

	// Classify scores the request's labels against its text and returns the
	// provider-native payload. Implementations never sort or filter scores and
	// must forward req.AllowMultiLabel() unchanged.
	Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error)

	// Close cleans up any resources.
	Close() error
}

// Availability is implemented by providers that may be unusable for a given
// request, for example a remote provider without a credential. Unavailable
// providers are skipped without being invoked.
type Availability interface {
	Available(ctx context.Context) bool
}

// IsAvailable reports whether p can be attempted for ctx.
func IsAvailable(ctx context.Context, p Provider) bool {
	if a, ok := p.(Availability); ok {
		return a.Available(ctx)
	}
	return true
}
