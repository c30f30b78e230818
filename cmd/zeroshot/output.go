package zeroshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/soundprediction/zeroshot/pkg/types"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how results are printed
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table, json, yaml)", s)
	}
}

// classifyOutput is the printable form of a result.
type classifyOutput struct {
	RequestID    string                  `json:"request_id" yaml:"request_id"`
	ProviderUsed types.ProviderID        `json:"provider_used" yaml:"provider_used"`
	Degraded     bool                    `json:"degraded" yaml:"degraded"`
	ScoredLabels []types.ScoredLabel     `json:"scored_labels" yaml:"scored_labels"`
	Failures     []types.ProviderFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Raw          any                     `json:"raw,omitempty" yaml:"raw,omitempty"`
}

func newClassifyOutput(res *types.ClassificationResult, includeRaw bool) classifyOutput {
	out := classifyOutput{
		RequestID:    res.RequestID,
		ProviderUsed: res.ProviderUsed,
		Degraded:     res.Degraded(),
		ScoredLabels: res.ScoredLabels,
		Failures:     res.Failures,
	}
	if includeRaw && len(res.RawProviderPayload) > 0 {
		var raw any
		if err := json.Unmarshal(res.RawProviderPayload, &raw); err == nil {
			out.Raw = raw
		}
	}
	return out
}

func writeResult(w io.Writer, res *types.ClassificationResult, format OutputFormat, includeRaw bool) error {
	out := newClassifyOutput(res, includeRaw)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return enc.Close()
	default:
		return writeTable(w, out)
	}
}

func writeTable(w io.Writer, out classifyOutput) error {
	provider := out.ProviderUsed.String()
	if out.Degraded {
		provider += " (degraded)"
	}
	fmt.Fprintf(w, "Provider: %s\n", provider)
	for _, f := range out.Failures {
		fmt.Fprintf(w, "  skipped %s: %s\n", f.Provider, f.Kind)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tLABEL\tSCORE")
	for i, l := range out.ScoredLabels {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, l.Label, l.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if out.Raw != nil {
		raw, err := json.Marshal(out.Raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nRaw: %s\n", raw)
	}
	return nil
}

// batchItem is one line of a --file run.
type batchItem struct {
	Text   string          `json:"text" yaml:"text"`
	Result *classifyOutput `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func writeBatch(w io.Writer, texts []string, results []*types.ClassificationResult, errs []error, format OutputFormat, includeRaw bool) error {
	items := make([]batchItem, len(texts))
	for i, text := range texts {
		items[i].Text = text
		if errs[i] != nil {
			items[i].Error = errs[i].Error()
			continue
		}
		out := newClassifyOutput(results[i], includeRaw)
		items[i].Result = &out
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTOP\tSCORE\tPROVIDER\tTEXT")
	for i, item := range items {
		if item.Result == nil {
			fmt.Fprintf(tw, "%d\t-\t-\terror: %s\t%s\n", i+1, item.Error, truncate(item.Text, 60))
			continue
		}
		top, label := 0.0, "-"
		if len(item.Result.ScoredLabels) > 0 {
			label, top = item.Result.ScoredLabels[0].Label, item.Result.ScoredLabels[0].Score
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\t%s\n", i+1, label, top, item.Result.ProviderUsed, truncate(item.Text, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
