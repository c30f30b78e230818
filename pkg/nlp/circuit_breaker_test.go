package nlp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAlerter struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recordingAlerter) Alert(subject, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}
}

func TestCircuitBreakerProvider_TripsAndAlerts(t *testing.T) {
	mock := &mockProvider{failUntilCall: 100, errorToReturn: NewRemoteError(500, "boom")}
	alerter := &recordingAlerter{}
	cb := NewCircuitBreakerProvider(mock, breakerConfig(), alerter, nil)

	for i := 0; i < 3; i++ {
		_, err := cb.Classify(context.Background(), testRequest(t))
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	require.Len(t, alerter.subjects, 1)
	assert.Contains(t, alerter.subjects[0], "remote_model")

	// Open breaker rejects without calling the provider.
	_, err := cb.Classify(context.Background(), testRequest(t))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, mock.callCount)
	assert.Equal(t, KindCircuitOpen, ErrorKind(err))
}

func TestCircuitBreakerProvider_IgnoresAuthAndShapeFailures(t *testing.T) {
	for _, failure := range []error{ErrAuthMissing, NewResponseShapeError("bad")} {
		mock := &mockProvider{failUntilCall: 100, errorToReturn: failure}
		cb := NewCircuitBreakerProvider(mock, breakerConfig(), nil, nil)

		for i := 0; i < 5; i++ {
			_, err := cb.Classify(context.Background(), testRequest(t))
			assert.True(t, errors.Is(err, failure))
		}
		assert.Equal(t, gobreaker.StateClosed, cb.State())
	}
}

func TestCircuitBreakerProvider_PassesPayloadThrough(t *testing.T) {
	mock := &mockProvider{payload: []byte(`[{"label":"sports","score":0.9}]`)}
	cb := NewCircuitBreakerProvider(mock, breakerConfig(), nil, nil)

	raw, err := cb.Classify(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"sports","score":0.9}]`, string(raw))
	assert.Equal(t, mock.ID(), cb.ID())
	assert.True(t, cb.Available(context.Background()))
}
