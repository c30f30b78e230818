package nlp_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestRemoteError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := nlp.NewRemoteError(503, "Model is currently loading")
		assert.Equal(t, "remote inference error (status 503): Model is currently loading", err.Error())
		assert.Equal(t, 503, err.HTTPStatusCode())
	})

	t.Run("error body only", func(t *testing.T) {
		err := nlp.NewRemoteError(0, "invalid token")
		assert.Equal(t, "remote inference error: invalid token", err.Error())
	})

	t.Run("errors.Is through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("remote_model: %w", nlp.NewRemoteError(500, "boom"))
		assert.True(t, errors.Is(wrapped, &nlp.RemoteError{}))
		assert.False(t, errors.Is(wrapped, &nlp.NetworkError{}))
	})
}

func TestResponseShapeError(t *testing.T) {
	err := nlp.NewResponseShapeError("expected %d scores, got %d", 3, 2)
	assert.Equal(t, "unrecognized provider response shape: expected 3 scores, got 2", err.Error())
	assert.ErrorIs(t, err, nlp.ErrResponseShape)
	assert.True(t, errors.Is(fmt.Errorf("normalize: %w", err), &nlp.ResponseShapeError{}))
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

var _ net.Error = timeoutNetError{}

func TestWrapTransportError(t *testing.T) {
	assert.Nil(t, nlp.WrapTransportError(nil))

	err := nlp.WrapTransportError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.True(t, errors.Is(err, &nlp.TimeoutError{}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = nlp.WrapTransportError(timeoutNetError{})
	assert.True(t, errors.Is(err, &nlp.TimeoutError{}))

	err = nlp.WrapTransportError(errors.New("connection refused"))
	assert.True(t, errors.Is(err, &nlp.NetworkError{}))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid input", err: nlp.ErrInvalidInput, want: nlp.KindInvalidInput},
		{name: "auth", err: fmt.Errorf("remote: %w", nlp.ErrAuthMissing), want: nlp.KindAuthMissing},
		{name: "shape", err: nlp.NewResponseShapeError("x"), want: nlp.KindResponseShape},
		{name: "timeout", err: &nlp.TimeoutError{Err: errors.New("slow")}, want: nlp.KindTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: nlp.KindTimeout},
		{name: "remote", err: nlp.NewRemoteError(500, "boom"), want: nlp.KindRemote},
		{name: "network", err: &nlp.NetworkError{Err: errors.New("eof")}, want: nlp.KindNetwork},
		{name: "breaker open", err: gobreaker.ErrOpenState, want: nlp.KindCircuitOpen},
		{name: "breaker half open", err: gobreaker.ErrTooManyRequests, want: nlp.KindCircuitOpen},
		{name: "unavailable", err: fmt.Errorf("load model: %w", nlp.ErrProviderUnavailable), want: nlp.KindUnavailable},
		{name: "panic", err: &utils.PanicError{Value: "boom"}, want: nlp.KindPanic},
		{name: "other", err: errors.New("?"), want: nlp.KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nlp.ErrorKind(tt.err))
		})
	}
}
