package zeroshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soundprediction/zeroshot"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/inference"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify text against a comma separated list of labels",
	Long: `Classify text against candidate labels and print them ranked by score.

Examples:
  zeroshot classify --text "The striker scored twice" --labels "sports, politics, health"
  zeroshot classify --text "..." --labels "a, b" --multi-label --output json
  zeroshot classify --text "..." --labels "a, b" --token hf_xxx --raw
  zeroshot classify --file headlines.txt --labels "a, b" --concurrency 8

A --token value is used for this run only and takes precedence over
HF_API_TOKEN and remote.api_token.`,
	RunE: runClassify,
}

var (
	classifyText   string
	classifyLabels string
	classifyMulti  bool
	classifyToken  string
	classifyFormat string
	classifyRaw    bool
	classifyOnly   []string
	classifyFile   string
	classifyJobs   int
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyText, "text", "t", "", "Text to classify (use - to read stdin)")
	classifyCmd.Flags().StringVarP(&classifyLabels, "labels", "l", "", "Comma separated candidate labels")
	classifyCmd.Flags().BoolVar(&classifyMulti, "multi-label", true, "Score labels independently (default from classifier.default_multi_label)")
	classifyCmd.Flags().StringVar(&classifyToken, "token", "", "Inference API token for this run")
	classifyCmd.Flags().StringVarP(&classifyFormat, "output", "o", "table", "Output format (table, json, yaml)")
	classifyCmd.Flags().BoolVar(&classifyRaw, "raw", false, "Include the provider's raw payload")
	classifyCmd.Flags().StringSliceVar(&classifyOnly, "providers", nil, "Override classifier.providers (local, remote)")

	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Classify every non-empty line of a file")
	classifyCmd.Flags().IntVar(&classifyJobs, "concurrency", 4, "Parallel requests with --file")

	classifyCmd.MarkFlagsOneRequired("text", "file")
	classifyCmd.MarkFlagsMutuallyExclusive("text", "file")
	_ = classifyCmd.MarkFlagRequired("labels")
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(classifyFormat)
	if err != nil {
		return err
	}

	text := classifyText
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("providers") {
		cfg.Classifier.Providers = classifyOnly
	}

	log, flush := newLogger(cfg)
	defer flush()

	client, err := zeroshot.NewClientFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close classifier", "error", err)
		}
	}()

	multi := client.DefaultMultiLabel()
	if cmd.Flags().Changed("multi-label") {
		multi = classifyMulti
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "cli")
	ctx = inference.WithSessionToken(ctx, classifyToken)

	if classifyFile != "" {
		texts, err := readLines(classifyFile)
		if err != nil {
			return err
		}
		results, errs, err := client.ClassifyBatch(ctx, texts, classifyLabels, multi, classifyJobs)
		if err != nil {
			return err
		}
		return writeBatch(cmd.OutOrStdout(), texts, results, errs, format, classifyRaw)
	}

	res, err := client.Classify(ctx, text, classifyLabels, multi)
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), res, format, classifyRaw)
}

// readLines returns the trimmed non-empty lines of path.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s contains no text", path)
	}
	return lines, nil
}
