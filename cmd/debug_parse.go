package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"viral-scout/internal/enrich"
)

var debugParseCmd = &cobra.Command{
	Use:   "debug-parse <response_path>",
	Short: "Debug: parse a saved AI response and print the extracted fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		f, strategy, ok := enrich.Parse(string(raw))
		if !ok {
			fmt.Fprintln(out, "no strategy matched; fallback excerpt:")
			fmt.Fprintln(out, enrich.Sanitize(enrich.StripFence(string(raw))))
			return nil
		}
		fmt.Fprintf(out, "strategy: %s\n", strategy)
		if f.Relevant != nil {
			fmt.Fprintf(out, "relevant: %t\n", *f.Relevant)
		}
		fmt.Fprintf(out, "summary: %s\n", f.Summary)
		fmt.Fprintf(out, "key notes: %s\n", f.KeyNotes)
		fmt.Fprintf(out, "brands: %s\n", f.Brands)
		fmt.Fprintf(out, "sentiment: %s\n", f.Sentiment)
		fmt.Fprintf(out, "action point: %s\n", f.ActionPoint)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugParseCmd)
}
