// Package keyword implements the degraded-quality fallback classifier: label
// tokens are matched as substrings of the case-folded text. It needs no model
// and no network, so it always produces a result for a valid request.
package keyword

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// Score returns one score per label, in label order, unsorted.
//
// Each label is split into whitespace tokens; a token matches when it occurs
// anywhere in the text (both case-folded). The raw score is
// matches / (1 + tokens), then every score is divided by the maximum so the
// best label scores exactly 1. When nothing matches all scores are 0.
func Score(text string, labels types.LabelSet) []types.ScoredLabel {
	folder := cases.Fold()
	folded := folder.String(text)

	out := make([]types.ScoredLabel, len(labels))
	maxScore := 0.0
	for i, label := range labels {
		tokens := strings.Fields(folder.String(label))
		matches := 0
		for _, tok := range tokens {
			if strings.Contains(folded, tok) {
				matches++
			}
		}
		score := float64(matches) / float64(1+len(tokens))
		if score > maxScore {
			maxScore = score
		}
		out[i] = types.ScoredLabel{Label: label, Score: score}
	}

	if maxScore > 0 {
		for i := range out {
			out[i].Score /= maxScore
		}
	}
	return out
}
