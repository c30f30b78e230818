// Package normalizer converts provider-native classification payloads into a
// ranked types.ClassificationResult.
//
// Two payload shapes are accepted:
//
//	{"labels": ["a", "b"], "scores": [0.9, 0.1], ...}
//	[{"label": "a", "score": 0.9}, {"label": "b", "score": 0.1}]
//
// In the list shape an entry without a non-empty "label" falls back to
// "role", then to the entry's compact JSON text; a missing "score" counts as
// 0. Any other payload is rejected with an *nlp.ResponseShapeError.
package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// parallelPayload is shape (a). Pointers distinguish absent keys from empty ones.
type parallelPayload struct {
	Labels *[]string  `json:"labels"`
	Scores *[]float64 `json:"scores"`
}

// Normalize validates raw, sorts its scores descending and tags the result
// with provider. Ties keep their order of appearance in raw. raw is stored
// unmodified in the result.
func Normalize(raw json.RawMessage, provider types.ProviderID) (*types.ClassificationResult, error) {
	scored, err := extract(raw)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return &types.ClassificationResult{
		ScoredLabels:       scored,
		ProviderUsed:       provider,
		RawProviderPayload: append(json.RawMessage(nil), raw...),
	}, nil
}

// Validate reports whether raw is in an accepted shape without building a result.
func Validate(raw json.RawMessage) error {
	_, err := extract(raw)
	return err
}

func extract(raw json.RawMessage) ([]types.ScoredLabel, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nlp.NewResponseShapeError("empty payload")
	}

	var scored []types.ScoredLabel
	var err error
	switch trimmed[0] {
	case '{':
		scored, err = extractParallel(trimmed)
	case '[':
		scored, err = extractList(trimmed)
	default:
		return nil, nlp.NewResponseShapeError("payload is neither an object nor an array")
	}
	if err != nil {
		return nil, err
	}

	for _, s := range scored {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 || s.Score > 1 {
			return nil, nlp.NewResponseShapeError("score %v for label %q is outside [0,1]", s.Score, s.Label)
		}
	}
	return scored, nil
}

func extractParallel(data []byte) ([]types.ScoredLabel, error) {
	var p parallelPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nlp.NewResponseShapeError("invalid labels/scores object: %v", err)
	}
	if p.Labels == nil || p.Scores == nil {
		return nil, nlp.NewResponseShapeError("object payload requires both labels and scores")
	}

	labels, scores := *p.Labels, *p.Scores
	if len(labels) != len(scores) {
		return nil, nlp.NewResponseShapeError("%d labels but %d scores", len(labels), len(scores))
	}
	if len(labels) == 0 {
		return nil, nlp.NewResponseShapeError("labels and scores are empty")
	}

	out := make([]types.ScoredLabel, len(labels))
	for i := range labels {
		out[i] = types.ScoredLabel{Label: labels[i], Score: scores[i]}
	}
	return out, nil
}

func extractList(data []byte) ([]types.ScoredLabel, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nlp.NewResponseShapeError("invalid list payload: %v", err)
	}
	if len(entries) == 0 {
		return nil, nlp.NewResponseShapeError("list payload is empty")
	}

	out := make([]types.ScoredLabel, 0, len(entries))
	for i, entry := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			return nil, nlp.NewResponseShapeError("entry %d is not an object", i)
		}

		label, err := entryLabel(entry, fields)
		if err != nil {
			return nil, nlp.NewResponseShapeError("entry %d: %v", i, err)
		}

		var score float64
		if rawScore, ok := fields["score"]; ok {
			if err := json.Unmarshal(rawScore, &score); err != nil {
				return nil, nlp.NewResponseShapeError("entry %d: score is not a number", i)
			}
		}

		out = append(out, types.ScoredLabel{Label: label, Score: score})
	}
	return out, nil
}

func entryLabel(entry json.RawMessage, fields map[string]json.RawMessage) (string, error) {
	for _, key := range []string{"label", "role"} {
		rawLabel, ok := fields[key]
		if !ok {
			continue
		}
		var label *string
		if err := json.Unmarshal(rawLabel, &label); err != nil {
			return "", err
		}
		// null and "" count as absent.
		if label == nil || *label == "" {
			continue
		}
		return *label, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, entry); err != nil {
		return "", err
	}
	return compact.String(), nil
}
