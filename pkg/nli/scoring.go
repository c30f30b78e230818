package nli

import (
	"fmt"
	"math"
	"strings"
)

// DefaultHypothesisTemplate turns a label into an entailment hypothesis.
const DefaultHypothesisTemplate = "This example is about {}."

// Hypothesis fills template's {} placeholder with label. A template without a
// placeholder gets the label appended.
func Hypothesis(template, label string) string {
	return strings.ReplaceAll(withPlaceholder(template), "{}", label)
}

// withPlaceholder returns template with a {} placeholder, appending one when
// it is missing.
func withPlaceholder(template string) string {
	if template == "" {
		return DefaultHypothesisTemplate
	}
	if !strings.Contains(template, "{}") {
		return template + " {}"
	}
	return template
}

// Hypotheses builds one hypothesis per label, in label order.
func Hypotheses(template string, labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = Hypothesis(template, l)
	}
	return out
}

// ToProbabilities maps raw model scores to [0,1]. Multi-label scores each
// logit independently with a sigmoid; single-label takes a softmax so the
// scores sum to 1.
func ToProbabilities(logits []float64, multiLabel bool) []float64 {
	out := make([]float64, len(logits))
	if multiLabel {
		for i, l := range logits {
			out[i] = sigmoid(l)
		}
		return out
	}

	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// alignScores puts model output, which comes back ordered by score, back
// into want's order by matching keys. Identical keys (duplicate labels) are
// matched in order of appearance.
func alignScores(want, keys []string, scores []float64) ([]float64, error) {
	if len(keys) != len(scores) {
		return nil, fmt.Errorf("model returned %d keys and %d scores", len(keys), len(scores))
	}
	if len(keys) != len(want) {
		return nil, fmt.Errorf("model returned %d results for %d inputs", len(keys), len(want))
	}

	pending := make(map[string][]int, len(want))
	for i, w := range want {
		pending[w] = append(pending[w], i)
	}

	out := make([]float64, len(want))
	for i, key := range keys {
		idx := pending[key]
		if len(idx) == 0 {
			return nil, fmt.Errorf("model returned unknown key %q", key)
		}
		out[idx[0]] = scores[i]
		pending[key] = idx[1:]
	}
	return out, nil
}
