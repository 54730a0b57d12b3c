package cmd

import (
	"github.com/lehigh-university-libraries/imgprefs/internal/journal"
	"github.com/lehigh-university-libraries/imgprefs/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <journal>",
		Short: "Summarize a preference journal",
		Long: `Counts the records in a preference journal per model and per label, and lists
images that were recorded more than once.`,
		Example: `  imgprefs report preferences.jsonl
  imgprefs report preferences.jsonl --format csv > labels.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := journal.ReadAll(args[0])
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), report.Summarize(args[0], records), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv, yaml)")

	return cmd
}
