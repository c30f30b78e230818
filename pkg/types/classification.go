package types

import (
	"encoding/json"
	"errors"
	"strings"
)

// Validation errors
var (
	ErrEmptyText   = errors.New("text cannot be empty")
	ErrEmptyLabels = errors.New("at least one label is required")
)

// LabelSet is an ordered list of trimmed, non-empty candidate labels.
// Duplicates are kept.
type LabelSet []string

// Clone returns a copy of the label set.
func (l LabelSet) Clone() LabelSet {
	if l == nil {
		return nil
	}
	out := make(LabelSet, len(l))
	copy(out, l)
	return out
}

// ClassificationRequest is the immutable input to a classification.
type ClassificationRequest struct {
	text            string
	labels          LabelSet
	allowMultiLabel bool
}

// NewClassificationRequest validates and builds a request.
// It fails with ErrEmptyText or ErrEmptyLabels; callers map both to invalid input.
func NewClassificationRequest(text string, labels LabelSet, allowMultiLabel bool) (ClassificationRequest, error) {
	if strings.TrimSpace(text) == "" {
		return ClassificationRequest{}, ErrEmptyText
	}
	if len(labels) == 0 {
		return ClassificationRequest{}, ErrEmptyLabels
	}
	return ClassificationRequest{
		text:            text,
		labels:          labels.Clone(),
		allowMultiLabel: allowMultiLabel,
	}, nil
}

// Text returns the text to classify.
func (r ClassificationRequest) Text() string { return r.text }

// Labels returns a copy of the candidate labels.
func (r ClassificationRequest) Labels() LabelSet { return r.labels.Clone() }

// AllowMultiLabel reports whether labels are scored independently.
func (r ClassificationRequest) AllowMultiLabel() bool { return r.allowMultiLabel }

// Validate checks the request invariants. The zero value is invalid.
func (r ClassificationRequest) Validate() error {
	if strings.TrimSpace(r.text) == "" {
		return ErrEmptyText
	}
	if len(r.labels) == 0 {
		return ErrEmptyLabels
	}
	return nil
}

// ProviderID identifies which provider produced a result.
type ProviderID string

const (
	// PrimaryModel is the locally resident NLI model.
	PrimaryModel ProviderID = "primary_model"
	// RemoteModel is the hosted inference endpoint.
	RemoteModel ProviderID = "remote_model"
	// KeywordFallback is the dependency-free keyword heuristic.
	KeywordFallback ProviderID = "keyword_fallback"
)

// String implements fmt.Stringer.
func (p ProviderID) String() string { return string(p) }

// ScoredLabel pairs a label with its affinity score in [0,1].
type ScoredLabel struct {
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

// ProviderFailure records why a provider did not produce the result.
type ProviderFailure struct {
	Provider ProviderID `json:"provider" yaml:"provider"`
	Kind     string     `json:"kind" yaml:"kind"`
	Message  string     `json:"message" yaml:"message"`
}

// ClassificationResult is the canonical ranked output of a classification.
// ScoredLabels are sorted by descending score; equal scores keep the order in
// which the provider reported them.
type ClassificationResult struct {
	RequestID          string            `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	ScoredLabels       []ScoredLabel     `json:"scored_labels" yaml:"scored_labels"`
	ProviderUsed       ProviderID        `json:"provider_used" yaml:"provider_used"`
	RawProviderPayload json.RawMessage   `json:"raw_provider_payload,omitempty" yaml:"-"`
	Failures           []ProviderFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Top returns the highest scoring label.
func (r *ClassificationResult) Top() (ScoredLabel, bool) {
	if r == nil || len(r.ScoredLabels) == 0 {
		return ScoredLabel{}, false
	}
	return r.ScoredLabels[0], true
}

// Degraded reports whether the result came from the keyword heuristic.
func (r *ClassificationResult) Degraded() bool {
	return r != nil && r.ProviderUsed == KeywordFallback
}
