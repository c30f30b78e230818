package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a mock classification provider for testing
type mockProvider struct {
	id            types.ProviderID
	callCount     int
	failUntilCall int
	errorToReturn error
	payload       json.RawMessage
	available     *bool
	closed        bool
}

func (m *mockProvider) ID() types.ProviderID {
	if m.id == "" {
		return types.RemoteModel
	}
	return m.id
}

func (m *mockProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	m.callCount++
	if m.callCount <= m.failUntilCall {
		return nil, m.errorToReturn
	}
	if m.payload != nil {
		return m.payload, nil
	}
	return json.RawMessage(`{"labels":["a"],"scores":[1]}`), nil
}

func (m *mockProvider) Available(ctx context.Context) bool {
	if m.available == nil {
		return true
	}
	return *m.available
}

func (m *mockProvider) Close() error {
	m.closed = true
	return nil
}

func testRequest(t *testing.T) types.ClassificationRequest {
	t.Helper()
	req, err := types.NewClassificationRequest("the match went to extra time", types.LabelSet{"sports", "politics"}, false)
	require.NoError(t, err)
	return req
}

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      10 * time.Millisecond,
		MaxDelay:          100 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryProvider_SuccessOnFirstAttempt(t *testing.T) {
	mock := &mockProvider{}
	retry := NewRetryProvider(mock, fastRetryConfig())

	raw, err := retry.Classify(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["a"],"scores":[1]}`, string(raw))
	assert.Equal(t, 1, mock.callCount)
}

func TestRetryProvider_SuccessAfterRetries(t *testing.T) {
	mock := &mockProvider{
		failUntilCall: 2,
		errorToReturn: NewRemoteError(503, "Model facebook/bart-large-mnli is currently loading"),
	}
	retry := NewRetryProvider(mock, fastRetryConfig())

	_, err := retry.Classify(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 3, mock.callCount)
}

func TestRetryProvider_ExhaustsRetries(t *testing.T) {
	mock := &mockProvider{
		failUntilCall: 10,
		errorToReturn: &NetworkError{Err: errors.New("connection reset by peer")},
	}
	retry := NewRetryProvider(mock, fastRetryConfig())

	_, err := retry.Classify(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.Equal(t, 4, mock.callCount)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.True(t, errors.Is(err, &NetworkError{}))
}

func TestRetryProvider_NonRetryableStopsImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "auth missing", err: ErrAuthMissing},
		{name: "response shape", err: NewResponseShapeError("labels and scores differ in length")},
		{name: "timeout", err: &TimeoutError{Err: context.DeadlineExceeded}},
		{name: "bad request", err: NewRemoteError(400, "bad request")},
		{name: "unauthorized", err: NewRemoteError(401, "invalid token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockProvider{failUntilCall: 10, errorToReturn: tt.err}
			retry := NewRetryProvider(mock, fastRetryConfig())

			_, err := retry.Classify(context.Background(), testRequest(t))
			require.Error(t, err)
			assert.Equal(t, 1, mock.callCount)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRetryProvider_ContextCancelledDuringBackoff(t *testing.T) {
	mock := &mockProvider{
		failUntilCall: 10,
		errorToReturn: NewRemoteError(502, "bad gateway"),
	}
	config := fastRetryConfig()
	config.InitialDelay = time.Second
	config.MaxDelay = time.Second
	retry := NewRetryProvider(mock, config)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := retry.Classify(ctx, testRequest(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &TimeoutError{}))
	assert.Equal(t, 1, mock.callCount)
}

func TestRetryProvider_DelegatesIdentity(t *testing.T) {
	off := false
	mock := &mockProvider{id: types.PrimaryModel, available: &off}
	retry := NewRetryProvider(mock, nil)

	assert.Equal(t, types.PrimaryModel, retry.ID())
	assert.False(t, retry.Available(context.Background()))
	require.NoError(t, retry.Close())
	assert.True(t, mock.closed)
}

func TestCalculateDelay(t *testing.T) {
	retry := NewRetryProvider(&mockProvider{}, &RetryConfig{
		MaxRetries:        5,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          1 * time.Second,
		BackoffMultiplier: 2.0,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second}, // capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, retry.calculateDelay(tt.attempt))
		})
	}
}

func TestNewRetryProvider_Defaults(t *testing.T) {
	retry := NewRetryProvider(&mockProvider{}, &RetryConfig{MaxRetries: -1})
	assert.Equal(t, 2, retry.config.MaxRetries)
	assert.Equal(t, time.Second, retry.config.InitialDelay)
	assert.Equal(t, 10*time.Second, retry.config.MaxDelay)
	assert.Equal(t, 2.0, retry.config.BackoffMultiplier)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "503 loading", err: NewRemoteError(503, "loading"), want: true},
		{name: "500", err: NewRemoteError(500, "boom"), want: true},
		{name: "429", err: NewRemoteError(429, "slow down"), want: true},
		{name: "404", err: NewRemoteError(404, "model not found"), want: false},
		{name: "error body without status", err: NewRemoteError(0, "Model is currently loading"), want: true},
		{name: "error body unrecognized", err: NewRemoteError(0, "invalid labels"), want: false},
		{name: "network", err: &NetworkError{Err: errors.New("dial tcp: no such host")}, want: true},
		{name: "wrapped network", err: fmt.Errorf("call: %w", &NetworkError{Err: errors.New("eof")}), want: true},
		{name: "timeout", err: &TimeoutError{Err: errors.New("deadline")}, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "auth", err: ErrAuthMissing, want: false},
		{name: "shape", err: NewResponseShapeError("bad"), want: false},
		{name: "message pattern", err: errors.New("upstream said: too many requests"), want: true},
		{name: "plain", err: errors.New("something else"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
