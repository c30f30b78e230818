package zeroshot

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/types"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List built-in providers and models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeModels(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

// providerOrder is the chain order used for display.
var providerOrder = []types.ProviderID{types.PrimaryModel, types.RemoteModel, types.KeywordFallback}

func writeModels(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tCAPABILITIES\tDEFAULT")
	for _, id := range providerOrder {
		for _, m := range nlp.GetModelsByProvider(id) {
			caps := make([]string, len(m.Capabilities))
			for i, c := range m.Capabilities {
				caps[i] = string(c)
			}
			def := ""
			if m.Default {
				def = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, m.ID, strings.Join(caps, ","), def)
		}
	}
	return tw.Flush()
}
