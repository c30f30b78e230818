package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/zeroshot"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
			Mode: gin.TestMode,
		},
	}
}

type brokenProvider struct{}

func (brokenProvider) ID() types.ProviderID { return types.RemoteModel }

func (brokenProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	return json.RawMessage(`<html>bad gateway</html>`), nil
}

func (brokenProvider) Close() error { return nil }

func newTestServer(t *testing.T, providers ...nlp.Provider) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := zeroshot.NewClient(providers, nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := New(testConfig(), client, logger)
	s.Setup()
	return s
}

func do(s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestSetup(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.Setup()

	require.NotNil(t, s.router)
	require.NotNil(t, s.server)
	assert.Equal(t, "localhost:8080", s.server.Addr)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/live", "/ready", "/health/detailed"} {
		w := do(s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestReadyWithoutClient(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.Setup()

	w := do(s, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClassifyEndpoint_KeywordFallback(t *testing.T) {
	s := newTestServer(t, brokenProvider{})

	w := do(s, http.MethodPost, "/api/v1/classify",
		`{"text":"Sports news tonight","labels":"sports, politics, health","multi_label":false}`,
		map[string]string{RequestIDHeader: "req-abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))

	var body struct {
		RequestID    string              `json:"request_id"`
		ProviderUsed types.ProviderID    `json:"provider_used"`
		Degraded     bool                `json:"degraded"`
		ScoredLabels []types.ScoredLabel `json:"scored_labels"`
		Top          types.ScoredLabel   `json:"top"`
		Failures     []types.ProviderFailure
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "req-abc", body.RequestID)
	assert.Equal(t, types.KeywordFallback, body.ProviderUsed)
	assert.True(t, body.Degraded)
	assert.Equal(t, types.ScoredLabel{Label: "sports", Score: 1}, body.Top)
	require.Len(t, body.Failures, 1)
	assert.Equal(t, nlp.KindResponseShape, body.Failures[0].Kind)
}

func TestClassifyEndpoint_GeneratesRequestID(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/classify", `{"text":"hello","labels":"a, b"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, w.Body.String(), `"request_id":"`+id+`"`)
}

func TestClassifyEndpoint_BadRequest(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/classify", `{"text":"hello","labels":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProvidersEndpoint(t *testing.T) {
	s := newTestServer(t, brokenProvider{})

	w := do(s, http.MethodGet, "/api/v1/providers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remote_model"`)
	assert.Contains(t, w.Body.String(), `"keyword_fallback"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodOptions, "/api/v1/classify", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Inference-Token")
}
