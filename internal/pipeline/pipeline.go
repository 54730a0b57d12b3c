// Package pipeline runs the labeling batch: enumerate images, skip what is
// already journaled or forced by policy, ask the model for the rest and append
// one record per image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/imgprefs/internal/images"
	"github.com/lehigh-university-libraries/imgprefs/internal/journal"
	"github.com/lehigh-university-libraries/imgprefs/internal/judgment"
	"github.com/lehigh-university-libraries/imgprefs/internal/providers"
	"github.com/lehigh-university-libraries/imgprefs/internal/skiplist"
)

// ErrNotDirectory is returned when the image root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Requester issues one preference request for an encoded image
type Requester interface {
	RequestPreference(ctx context.Context, model, style string, image *providers.Image) (string, error)
}

// Options configures a run
type Options struct {
	Root         string
	Model        string
	Style        string
	Output       string
	Recursive    bool
	SkipExisting bool
	// Limit stops the run after this many records are written; 0 means no limit.
	Limit   int
	Exclude []string
	Policy  *skiplist.Policy
}

// Summary counts what happened to each enumerated image
type Summary struct {
	Written       int `json:"written"`
	PolicySkipped int `json:"policy_skipped"`
	Resumed       int `json:"resumed"`
	Unsupported   int `json:"unsupported"`
	ReadFailed    int `json:"read_failed"`
	RequestFailed int `json:"request_failed"`
	ParseFailed   int `json:"parse_failed"`
}

// Failed returns the number of images that produced no record due to an error.
func (s *Summary) Failed() int {
	return s.Unsupported + s.ReadFailed + s.RequestFailed + s.ParseFailed
}

// Run processes the images under opts.Root sequentially. Per-image failures
// are logged and counted; only setup problems, journal write failures and
// cancellation end the run early.
func Run(ctx context.Context, opts Options, requester Requester) (*Summary, error) {
	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", opts.Root, ErrNotDirectory)
	}

	logger := slog.With("run_id", uuid.NewString())
	logger.Info("Starting preference run", "images", opts.Root, "model", opts.Model, "output", opts.Output)

	processed := make(map[string]struct{})
	if opts.SkipExisting {
		processed, err = journal.LoadProcessed(opts.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing entries: %w", err)
		}
		logger.Info("Loaded existing entries", "count", len(processed))
	}

	found, err := images.List(opts.Root, images.ListOptions{Recursive: opts.Recursive, Exclude: opts.Exclude})
	if err != nil {
		return nil, err
	}
	logger.Info("Found images", "count", len(found))

	writer, err := journal.Open(opts.Output)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	summary := &Summary{}
	for _, img := range found {
		if err := ctx.Err(); err != nil {
			logger.Info("Run interrupted", "written", summary.Written)
			return summary, err
		}

		if opts.SkipExisting {
			if _, ok := processed[img.ID]; ok {
				logger.Info("Skipping image (already processed)", "image", img.ID)
				summary.Resumed++
				continue
			}
		}

		preference, ok := judge(ctx, logger, opts, requester, img, summary)
		if !ok {
			if err := ctx.Err(); err != nil {
				logger.Info("Run interrupted", "written", summary.Written)
				return summary, err
			}
			continue
		}

		record := journal.Record{Image: img.ID, Model: opts.Model, Preference: preference}
		if err := writer.Append(record); err != nil {
			return summary, err
		}
		processed[img.ID] = struct{}{}
		summary.Written++

		if opts.Limit > 0 && summary.Written >= opts.Limit {
			logger.Info("Reached limit", "limit", opts.Limit)
			break
		}
	}

	logger.Info("Done.",
		"written", summary.Written,
		"policy_skipped", summary.PolicySkipped,
		"resumed", summary.Resumed,
		"failed", summary.Failed())
	return summary, nil
}

// judge returns the preference for one image, or false when the image must be
// skipped. Errors never escape this function.
func judge(ctx context.Context, logger *slog.Logger, opts Options, requester Requester, img images.Image, summary *Summary) (judgment.Preference, bool) {
	if opts.Policy.Matches(img.ID) {
		logger.Info("Skipping image by policy; recording sentinel preference", "image", img.ID, "preference", judgment.Sentinel)
		summary.PolicySkipped++
		return judgment.Skipped(), true
	}

	encoded, err := images.Load(img.Path)
	if errors.Is(err, images.ErrUnsupportedType) {
		logger.Warn("Skipping image", "image", img.ID, "err", err)
		summary.Unsupported++
		return judgment.Preference{}, false
	}
	if err != nil {
		logger.Error("Failed to read image", "image", img.ID, "err", err)
		summary.ReadFailed++
		return judgment.Preference{}, false
	}

	logger.Info("Querying", "image", img.ID)
	text, err := requester.RequestPreference(ctx, opts.Model, opts.Style, encoded)
	if err != nil {
		logger.Error("Failed to get preference", "image", img.ID, "err", err)
		summary.RequestFailed++
		return judgment.Preference{}, false
	}

	preference, err := judgment.Parse(text)
	if err != nil {
		if errors.Is(err, judgment.ErrMissingPreference) {
			logger.Error("Missing preference in response", "image", img.ID, "response", text, "err", err)
		} else {
			logger.Error("Non-JSON response", "image", img.ID, "response", text, "err", err)
		}
		summary.ParseFailed++
		return judgment.Preference{}, false
	}

	logger.Debug("Parsed preference", "image", img.ID, "preference", preference.String())
	return preference, true
}
