package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/zeroshot/pkg/inference"
	"github.com/soundprediction/zeroshot/pkg/labels"
	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/server/dto"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier records the request it receives and answers with result.
type fakeClassifier struct {
	result    *types.ClassificationResult
	err       error
	multi     bool
	got       types.ClassificationRequest
	gotCalled bool
	gotToken  bool
}

func (f *fakeClassifier) Classify(ctx context.Context, text, rawLabels string, allowMultiLabel bool) (*types.ClassificationResult, error) {
	req, err := types.NewClassificationRequest(text, labels.Parse(rawLabels), allowMultiLabel)
	if err != nil {
		return nil, err
	}
	return f.ClassifyRequest(ctx, req)
}

func (f *fakeClassifier) ClassifyRequest(ctx context.Context, req types.ClassificationRequest) (*types.ClassificationResult, error) {
	f.got = req
	f.gotCalled = true
	// The session token is only observable through the remote provider.
	f.gotToken = inference.NewRemoteProvider(nil, nil).Available(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeClassifier) DefaultMultiLabel() bool { return f.multi }

func (f *fakeClassifier) Providers() []types.ProviderID {
	return []types.ProviderID{types.PrimaryModel, types.RemoteModel, types.KeywordFallback}
}

func postClassify(t *testing.T, h *ClassifyHandler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/api/v1/classify", h.Classify)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleResult() *types.ClassificationResult {
	return &types.ClassificationResult{
		RequestID: "req-1",
		ScoredLabels: []types.ScoredLabel{
			{Label: "sports", Score: 0.9},
			{Label: "politics", Score: 0.1},
		},
		ProviderUsed:       types.RemoteModel,
		RawProviderPayload: json.RawMessage(`{"labels":["sports","politics"],"scores":[0.9,0.1]}`),
		Failures: []types.ProviderFailure{
			{Provider: types.PrimaryModel, Kind: nlp.KindUnavailable, Message: "model not found"},
		},
	}
}

func TestClassify_Success(t *testing.T) {
	fake := &fakeClassifier{result: sampleResult(), multi: true}
	h := NewClassifyHandler(fake, fake, nil)

	w := postClassify(t, h, `{"text":"Great match","labels":"sports, politics, ","include_raw":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ClassifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, types.RemoteModel, resp.ProviderUsed)
	assert.False(t, resp.Degraded)
	require.NotNil(t, resp.Top)
	assert.Equal(t, "sports", resp.Top.Label)
	assert.Len(t, resp.Failures, 1)
	assert.JSONEq(t, `{"labels":["sports","politics"],"scores":[0.9,0.1]}`, string(resp.Raw))

	assert.Equal(t, types.LabelSet{"sports", "politics"}, fake.got.Labels())
	assert.True(t, fake.got.AllowMultiLabel(), "default mode applies when multi_label is absent")
}

func TestClassify_RawOmittedByDefault(t *testing.T) {
	fake := &fakeClassifier{result: sampleResult()}
	h := NewClassifyHandler(fake, fake, nil)

	w := postClassify(t, h, `{"text":"Great match","labels":["sports"," politics "],"multi_label":false}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "raw")
	assert.False(t, fake.got.AllowMultiLabel())
	assert.Equal(t, types.LabelSet{"sports", "politics"}, fake.got.Labels())
}

func TestClassify_SessionToken(t *testing.T) {
	fake := &fakeClassifier{result: sampleResult()}
	h := NewClassifyHandler(fake, fake, nil)

	postClassify(t, h, `{"text":"x","labels":"a"}`, nil)
	assert.False(t, fake.gotToken)

	postClassify(t, h, `{"text":"x","labels":"a"}`, map[string]string{TokenHeader: "hf_user"})
	assert.True(t, fake.gotToken)
}

func TestClassify_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"text":`},
		{name: "blank text", body: `{"text":"  ","labels":"a"}`},
		{name: "no labels", body: `{"text":"hello","labels":" , "}`},
		{name: "missing labels", body: `{"text":"hello"}`},
		{name: "labels wrong type", body: `{"text":"hello","labels":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClassifier{result: sampleResult()}
			h := NewClassifyHandler(fake, fake, nil)

			w := postClassify(t, h, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, fake.gotCalled)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request", resp.Error)
		})
	}
}

func TestClassify_ClassifierErrors(t *testing.T) {
	fake := &fakeClassifier{err: errors.New("keyword fallback failed: boom")}
	h := NewClassifyHandler(fake, fake, nil)
	w := postClassify(t, h, `{"text":"x","labels":"a"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	fake.err = nlp.ErrInvalidInput
	w = postClassify(t, h, `{"text":"x","labels":"a"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassify_NoClassifier(t *testing.T) {
	h := NewClassifyHandler(nil, nil, nil)
	w := postClassify(t, h, `{"text":"x","labels":"a"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProviders(t *testing.T) {
	fake := &fakeClassifier{multi: true}
	h := NewClassifyHandler(fake, fake, nil)

	r := gin.New()
	r.GET("/api/v1/providers", h.Providers)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ProvidersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.DefaultMultiLabel)
	require.Len(t, resp.Providers, 3)
	assert.Equal(t, 1, resp.Providers[0].Position)
	assert.Equal(t, types.PrimaryModel, resp.Providers[0].ID)
	assert.True(t, resp.Providers[0].Local)
	assert.Equal(t, types.KeywordFallback, resp.Providers[2].ID)
	assert.True(t, resp.Providers[2].Degraded)
}
