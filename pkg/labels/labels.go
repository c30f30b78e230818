// Package labels turns raw comma-delimited user input into a LabelSet.
package labels

import (
	"strings"

	"github.com/soundprediction/zeroshot/pkg/types"
)

// Separator delimits labels in raw input.
const Separator = ","

// Parse splits raw on commas, trims every segment and drops empty ones.
// Order and duplicates are preserved. Parse never fails; an input with no
// usable segment yields an empty LabelSet which callers must reject.
func Parse(raw string) types.LabelSet {
	segments := strings.Split(raw, Separator)
	out := make(types.LabelSet, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Join renders a LabelSet back into the raw input form.
func Join(set types.LabelSet) string {
	return strings.Join(set, Separator+" ")
}
