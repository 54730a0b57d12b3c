package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "imgprefs",
		Short: "Collect LLM preference judgments for a directory of images",
		Long: `imgprefs sends every image in a directory to a vision-capable LLM and records
one preference label per image in an append-only JSONL journal.

Runs can be interrupted and resumed with --skip-existing, and the resulting
journal can be summarized or exported to Parquet.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newLabelCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
