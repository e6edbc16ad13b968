package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lvillar/pbitdoc"
)

func newInspectCmd(*app) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "inspect <file.pbit>",
		Short: "Print the simplified data model of a .pbit template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := pbitdoc.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], pbitdoc.Message(err))
			}

			out := cmd.OutOrStdout()
			if !summary {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"stats": m.Stats(), "model": m})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tCOLUMNS\tMEASURES\tRELATIONSHIPS")
			for _, t := range m.Tables {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Name, len(t.Columns), len(t.Measures), len(m.RelationshipsFor(t.Name)))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a per-table summary instead of JSON")
	return cmd
}
