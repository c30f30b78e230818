package dto

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/soundprediction/zeroshot/pkg/labels"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// Validation errors
var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrEmptyLabels     = errors.New("labels cannot be empty")
	ErrTextTooLong     = errors.New("text exceeds maximum length (1MB)")
	ErrTooManyLabels   = errors.New("labels count exceeds maximum (256)")
	ErrLabelsWrongType = errors.New("labels must be a string or an array of strings")
)

// MaxFieldLengths defines maximum lengths for fields to prevent abuse
const (
	MaxTextLength = 1024 * 1024 // 1MB
	MaxLabelCount = 256
)

// Labels accepts either a comma separated string or a JSON array of strings.
type Labels types.LabelSet

// UnmarshalJSON implements json.Unmarshaler
func (l *Labels) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*l = Labels(labels.Parse(raw))
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return ErrLabelsWrongType
	}
	out := make(Labels, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// ClassifyRequest is the body of POST /api/v1/classify
type ClassifyRequest struct {
	Text       string `json:"text"`
	Labels     Labels `json:"labels"`
	MultiLabel *bool  `json:"multi_label,omitempty"`
	IncludeRaw bool   `json:"include_raw,omitempty"`
}

// Validate performs validation on ClassifyRequest
func (r *ClassifyRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	if len(r.Labels) == 0 {
		return ErrEmptyLabels
	}
	if len(r.Labels) > MaxLabelCount {
		return ErrTooManyLabels
	}
	return nil
}

// ClassifyResponse is the body returned for a classification
type ClassifyResponse struct {
	RequestID    string                  `json:"request_id"`
	ProviderUsed types.ProviderID        `json:"provider_used"`
	Degraded     bool                    `json:"degraded"`
	ScoredLabels []types.ScoredLabel     `json:"scored_labels"`
	Top          *types.ScoredLabel      `json:"top,omitempty"`
	Failures     []types.ProviderFailure `json:"failures"`
	Raw          json.RawMessage         `json:"raw,omitempty"`
}

// NewClassifyResponse converts a result for the wire.
func NewClassifyResponse(res *types.ClassificationResult, includeRaw bool) ClassifyResponse {
	resp := ClassifyResponse{
		RequestID:    res.RequestID,
		ProviderUsed: res.ProviderUsed,
		Degraded:     res.Degraded(),
		ScoredLabels: res.ScoredLabels,
		Failures:     res.Failures,
	}
	if top, ok := res.Top(); ok {
		resp.Top = &top
	}
	if resp.Failures == nil {
		resp.Failures = []types.ProviderFailure{}
	}
	if includeRaw {
		resp.Raw = res.RawProviderPayload
	}
	return resp
}

// ProviderInfo describes one entry of the provider chain
type ProviderInfo struct {
	Position    int              `json:"position"`
	ID          types.ProviderID `json:"id"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Local       bool             `json:"local"`
	Degraded    bool             `json:"degraded"`
}

// ProvidersResponse is the body of GET /api/v1/providers
type ProvidersResponse struct {
	Providers         []ProviderInfo `json:"providers"`
	DefaultMultiLabel bool           `json:"default_multi_label"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
