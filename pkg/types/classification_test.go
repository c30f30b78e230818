package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassificationRequest(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		labels  LabelSet
		wantErr error
	}{
		{name: "valid", text: "hello", labels: LabelSet{"a"}},
		{name: "empty text", text: "", labels: LabelSet{"a"}, wantErr: ErrEmptyText},
		{name: "whitespace text", text: "  \n\t", labels: LabelSet{"a"}, wantErr: ErrEmptyText},
		{name: "no labels", text: "hello", labels: nil, wantErr: ErrEmptyLabels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewClassificationRequest(tt.text, tt.labels, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, req.Validate())
		})
	}
}

func TestClassificationRequestIsImmutable(t *testing.T) {
	labels := LabelSet{"sports", "tech"}
	req, err := NewClassificationRequest("text", labels, true)
	require.NoError(t, err)

	labels[0] = "changed"
	got := req.Labels()
	got[1] = "changed too"

	assert.Equal(t, LabelSet{"sports", "tech"}, req.Labels())
	assert.True(t, req.AllowMultiLabel())
}

func TestZeroRequestIsInvalid(t *testing.T) {
	var req ClassificationRequest
	assert.ErrorIs(t, req.Validate(), ErrEmptyText)
}

func TestClassificationResultTop(t *testing.T) {
	var empty *ClassificationResult
	_, ok := empty.Top()
	assert.False(t, ok)

	res := &ClassificationResult{
		ScoredLabels: []ScoredLabel{{Label: "a", Score: 0.9}, {Label: "b", Score: 0.1}},
		ProviderUsed: KeywordFallback,
	}
	top, ok := res.Top()
	require.True(t, ok)
	assert.Equal(t, "a", top.Label)
	assert.True(t, res.Degraded())
}
