package nli

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelineBackends"
	"github.com/knights-analytics/hugot/pipelines"
)

const pipelineName = "zeroshot-nli"

// zeroShotScorer runs an NLI model through hugot's zero-shot pipeline. The
// pipeline finds the entailment index in the model's id2label map and applies
// the multi-label (entailment vs contradiction per label) or single-label
// (softmax over labels) mapping itself.
type zeroShotScorer struct {
	// mu guards the pipeline's per-request labels and mode.
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.ZeroShotClassificationPipeline
}

func newZeroShotScorer(config *Config) (*zeroShotScorer, error) {
	modelPath, err := resolveModelPath(config.Model, config.ModelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create inference session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.ZeroShotClassificationConfig{
		Name:      pipelineName,
		ModelPath: modelPath,
		Options: []pipelineBackends.PipelineOption[*pipelines.ZeroShotClassificationPipeline]{
			pipelines.WithHypothesisTemplate(withPlaceholder(config.HypothesisTemplate)),
		},
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to load zero-shot pipeline from %s: %w", modelPath, err), session.Destroy())
	}

	return &zeroShotScorer{session: session, pipeline: pipeline}, nil
}

// resolveModelPath returns model when it is a local directory and otherwise
// downloads it from the Hugging Face hub into dir.
func resolveModelPath(model, dir string) (string, error) {
	if info, err := os.Stat(model); err == nil && info.IsDir() {
		return model, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}
	path, err := hugot.DownloadModel(model, dir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", model, err)
	}
	return path, nil
}

// Score implements Scorer.
func (s *zeroShotScorer) Score(text string, labels []string, multiLabel bool) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pipeline.Labels = labels
	s.pipeline.Multilabel = multiLabel

	out, err := s.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("zero-shot pipeline failed: %w", err)
	}
	if len(out.ClassificationOutputs) != 1 {
		return nil, fmt.Errorf("zero-shot pipeline returned %d outputs for 1 input", len(out.ClassificationOutputs))
	}

	values := out.ClassificationOutputs[0].SortedValues
	keys := make([]string, len(values))
	scores := make([]float64, len(values))
	for i, v := range values {
		keys[i] = v.Key
		scores[i] = float64(v.Value)
	}
	return alignScores(labels, keys, scores)
}

func (s *zeroShotScorer) Close() error {
	return s.session.Destroy()
}
