package labels

import (
	"testing"

	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want types.LabelSet
	}{
		{name: "keeps duplicates and order", raw: "  sports, , sports ,tech", want: types.LabelSet{"sports", "sports", "tech"}},
		{name: "single label", raw: "health", want: types.LabelSet{"health"}},
		{name: "multi word labels", raw: "machine learning,  world cup ", want: types.LabelSet{"machine learning", "world cup"}},
		{name: "empty", raw: "", want: types.LabelSet{}},
		{name: "only separators", raw: " , ,,  ", want: types.LabelSet{}},
		{name: "unicode", raw: "política, salud", want: types.LabelSet{"política", "salud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want, got)
			for _, l := range got {
				assert.NotEmpty(t, l)
			}
		})
	}
}

func TestJoinRoundTrip(t *testing.T) {
	set := types.LabelSet{"deportes", "política", "salud"}
	assert.Equal(t, "deportes, política, salud", Join(set))
	assert.Equal(t, set, Parse(Join(set)))
}
