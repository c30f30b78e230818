package nli

import (
	"fmt"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// rerankScorer scores label hypotheses with a single-output reranker. The
// relevance score is read as a logit, so only reranker models belong here;
// a 3-way NLI head has no single score with entailment meaning.
type rerankScorer struct {
	reranker *embedder.Reranker
	template string
}

func newRerankScorer(model, template string) (*rerankScorer, error) {
	reranker, err := embedder.NewReranker(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create reranker: %w", err)
	}
	return &rerankScorer{reranker: reranker, template: template}, nil
}

// Score implements Scorer. The reranker sorts by relevance, so results are
// mapped back to label order by passage text.
func (s *rerankScorer) Score(text string, labels []string, multiLabel bool) ([]float64, error) {
	hypotheses := Hypotheses(s.template, labels)

	// go-embedeverything does not support context yet
	results, err := s.reranker.Rerank(text, hypotheses)
	if err != nil {
		return nil, fmt.Errorf("failed to rerank hypotheses: %w", err)
	}

	texts := make([]string, len(results))
	relevance := make([]float64, len(results))
	for i, r := range results {
		texts[i] = r.Text
		relevance[i] = float64(r.Score)
	}

	aligned, err := alignScores(hypotheses, texts, relevance)
	if err != nil {
		return nil, err
	}
	return ToProbabilities(aligned, multiLabel), nil
}

func (s *rerankScorer) Close() error {
	s.reranker.Close()
	return nil
}
