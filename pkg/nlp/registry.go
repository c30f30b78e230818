package nlp

import (
	"slices"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// TaskCapability represents a specific NLP task that a model can perform.
type TaskCapability string

const (
	// TaskZeroShotClassification represents NLI-based zero-shot classification.
	TaskZeroShotClassification TaskCapability = "zero_shot_classification"
	// TaskReranking represents cross-encoder (query, passage) scoring.
	TaskReranking TaskCapability = "reranking"
	// TaskKeywordMatching represents token overlap heuristics.
	TaskKeywordMatching TaskCapability = "keyword_matching"
)

// ProviderInfo describes a classification provider.
type ProviderInfo struct {
	ID          types.ProviderID
	Name        string
	Description string
	IsLocal     bool
	// Degraded marks heuristic providers whose scores are not model-backed.
	Degraded bool
}

// Model represents a specific model a provider can serve.
type Model struct {
	ID           string
	Name         string
	ProviderID   types.ProviderID
	Capabilities []TaskCapability
	Description  string
	// Default marks the model used when configuration leaves it empty.
	Default bool
}

// BuiltInProviders contains the standard set of supported providers.
var BuiltInProviders = map[types.ProviderID]ProviderInfo{
	types.PrimaryModel: {
		ID:          types.PrimaryModel,
		Name:        "Local NLI",
		Description: "Locally loaded model scoring text against label hypotheses",
		IsLocal:     true,
	},
	types.RemoteModel: {
		ID:          types.RemoteModel,
		Name:        "Hosted Inference",
		Description: "Hosted zero-shot classification endpoint reached over HTTP with a bearer token",
		IsLocal:     false,
	},
	types.KeywordFallback: {
		ID:          types.KeywordFallback,
		Name:        "Keyword Fallback",
		Description: "Token overlap heuristic used when no model-backed provider succeeds",
		IsLocal:     true,
		Degraded:    true,
	},
}

// BuiltInModels contains a curated list of built-in models.
var BuiltInModels = []Model{
	// --- Local (nli backend) ---
	{
		ID:           "KnightsAnalytics/deberta-v3-base-zeroshot-v1",
		Name:         "DeBERTa v3 Base Zero-Shot",
		ProviderID:   types.PrimaryModel,
		Capabilities: []TaskCapability{TaskZeroShotClassification},
		Description:  "ONNX NLI model scored on its entailment output",
		Default:      true,
	},

	// --- Local (reranker backend) ---
	{
		ID:           "BAAI/bge-reranker-base",
		Name:         "BGE Reranker Base",
		ProviderID:   types.PrimaryModel,
		Capabilities: []TaskCapability{TaskReranking},
		Description:  "Single-output relevance reranker; scores label hypotheses by relevance",
	},

	// --- Hosted ---
	{
		ID:           "facebook/bart-large-mnli",
		Name:         "BART Large MNLI",
		ProviderID:   types.RemoteModel,
		Capabilities: []TaskCapability{TaskZeroShotClassification},
		Description:  "Standard zero-shot classification model",
		Default:      true,
	},
	{
		ID:           "MoritzLaurer/mDeBERTa-v3-base-mnli-xnli",
		Name:         "mDeBERTa v3 XNLI",
		ProviderID:   types.RemoteModel,
		Capabilities: []TaskCapability{TaskZeroShotClassification},
		Description:  "Multilingual zero-shot classification",
	},

	// --- Heuristic ---
	{
		ID:           "keyword-overlap",
		Name:         "Keyword Overlap",
		ProviderID:   types.KeywordFallback,
		Capabilities: []TaskCapability{TaskKeywordMatching},
		Description:  "Case-folded token substring matching",
		Default:      true,
	},
}

// GetProvider returns the provider with the given ID.
func GetProvider(id types.ProviderID) (ProviderInfo, bool) {
	p, ok := BuiltInProviders[id]
	return p, ok
}

// GetModel returns the model with the given ID.
func GetModel(id string) (Model, bool) {
	for _, m := range BuiltInModels {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// GetModelsByProvider returns all models for a specific provider.
func GetModelsByProvider(providerID types.ProviderID) []Model {
	var models []Model
	for _, m := range BuiltInModels {
		if m.ProviderID == providerID {
			models = append(models, m)
		}
	}
	return models
}

// GetModelsByCapability returns all models capable of a specific task.
func GetModelsByCapability(capability TaskCapability) []Model {
	var models []Model
	for _, m := range BuiltInModels {
		if slices.Contains(m.Capabilities, capability) {
			models = append(models, m)
		}
	}
	return models
}

// DefaultModel returns the default model for a provider.
func DefaultModel(providerID types.ProviderID) (Model, bool) {
	for _, m := range BuiltInModels {
		if m.ProviderID == providerID && m.Default {
			return m, true
		}
	}
	return Model{}, false
}
