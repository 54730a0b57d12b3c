package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/lehigh-university-libraries/imgprefs/internal/labeling"
	"github.com/lehigh-university-libraries/imgprefs/internal/pipeline"
	"github.com/lehigh-university-libraries/imgprefs/internal/skiplist"
	"github.com/spf13/cobra"
)

type labelFlags struct {
	style        string
	model        string
	provider     string
	recursive    bool
	output       string
	limit        int
	maxRetries   int
	retryDelay   float64
	skipExisting bool
	skipList     string
	skipAnchor   string
	exclude      []string
	temperature  float64
}

func newLabelCmd() *cobra.Command {
	var flags labelFlags

	cmd := &cobra.Command{
		Use:   "label <images>",
		Short: "Collect one preference judgment per image",
		Long: `Iterates through a directory of images and asks a vision-capable LLM for a
single preference label per image, appending each result to a JSONL journal.

Images named in the skip list are recorded with preference -1 without calling
the model. With --skip-existing, images already present in the journal are not
processed again.`,
		Example: `  # Label every image in ./images with GPT-4o
  imgprefs label ./images --style "Prefer clean, uncluttered compositions"

  # Resume an interrupted run, walking subdirectories
  imgprefs label ./images --recursive --skip-existing --style "$(cat rubric.txt)"

  # Use a local Ollama model and a skip list
  imgprefs label ./images --provider ollama --model llava:13b --skip-list skip.json --style "..."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabel(cmd, args[0], flags)
		},
	}

	defaults := labeling.DefaultRetryConfig()
	cmd.Flags().StringVar(&flags.style, "style", "", "Style or rubric prompt for the model (required)")
	cmd.Flags().StringVar(&flags.model, "model", labeling.DefaultModel, "Vision-capable model to use")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "LLM provider (openai, ollama, or gemini); defaults to $IMGPREFS_PROVIDER or openai")
	cmd.Flags().BoolVar(&flags.recursive, "recursive", false, "Recursively search image directory")
	cmd.Flags().StringVar(&flags.output, "output", "preferences.jsonl", "Destination JSONL file")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Maximum number of images to process (0 for all)")
	cmd.Flags().IntVar(&flags.maxRetries, "max-retries", defaults.MaxAttempts, "Number of request attempts per image (missing API keys and 4xx responses other than 429 are not retried)")
	cmd.Flags().Float64Var(&flags.retryDelay, "retry-delay", defaults.Delay.Seconds(), "Base delay between retries in seconds")
	cmd.Flags().BoolVar(&flags.skipExisting, "skip-existing", false, "Skip images already present in the output file")
	cmd.Flags().StringVar(&flags.skipList, "skip-list", "", "File listing images to record as -1 without querying; defaults to $IMGPREFS_SKIP_LIST")
	cmd.Flags().StringVar(&flags.skipAnchor, "skip-anchor", "", "Directory that relative skip list entries are resolved against (defaults to the skip list's directory)")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "Glob pattern of image paths to ignore (repeatable)")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "Sampling temperature sent to the provider")

	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func runLabel(cmd *cobra.Command, root string, flags labelFlags) error {
	if flags.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	skipList := flags.skipList
	if skipList == "" {
		skipList = os.Getenv("IMGPREFS_SKIP_LIST")
	}

	provider, err := labeling.NewProvider(flags.provider)
	if err != nil {
		return err
	}

	service := labeling.NewService(provider,
		labeling.WithRetryConfig(labeling.RetryConfig{
			MaxAttempts: flags.maxRetries,
			Delay:       time.Duration(flags.retryDelay * float64(time.Second)),
		}),
		labeling.WithTemperature(flags.temperature),
	)

	opts := pipeline.Options{
		Root:         root,
		Model:        flags.model,
		Style:        flags.style,
		Output:       flags.output,
		Recursive:    flags.recursive,
		SkipExisting: flags.skipExisting,
		Limit:        flags.limit,
		Exclude:      flags.exclude,
	}
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		opts.Policy = skiplist.LoadPolicy(skipList, root, flags.skipAnchor)
	}

	summary, err := pipeline.Run(cmd.Context(), opts, service)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %d records to %s (%d skipped by policy, %d already present, %d failed)\n",
		summary.Written, flags.output, summary.PolicySkipped, summary.Resumed, summary.Failed())
	return nil
}
