package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/imgprefs/internal/journal"
	"github.com/lehigh-university-libraries/imgprefs/internal/report"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var parquetPath string

	cmd := &cobra.Command{
		Use:   "export <journal>",
		Short: "Export a preference journal to Parquet",
		Example: `  imgprefs export preferences.jsonl --parquet preferences.parquet`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := journal.ReadAll(args[0])
			if err != nil {
				return err
			}
			if err := report.WriteParquet(parquetPath, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), parquetPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&parquetPath, "parquet", "preferences.parquet", "Destination Parquet file")

	return cmd
}
