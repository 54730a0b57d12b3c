package labeling

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lehigh-university-libraries/imgprefs/internal/gemini"
	"github.com/lehigh-university-libraries/imgprefs/internal/ollama"
	"github.com/lehigh-university-libraries/imgprefs/internal/openai"
	"github.com/lehigh-university-libraries/imgprefs/internal/providers"
)

// DefaultModel is used when no model is given on the command line.
const DefaultModel = "gpt-4o"

// RetryConfig holds the retry policy for preference requests.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per image.
	MaxAttempts int

	// Delay is multiplied by the attempt number before each retry.
	Delay time.Duration
}

// DefaultRetryConfig returns the retry defaults used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

// Backoff returns the wait after a failed attempt (1-based).
func (r RetryConfig) Backoff(attempt int) time.Duration {
	return r.Delay * time.Duration(attempt)
}

// Service requests preference judgments from a provider
type Service struct {
	provider    providers.Provider
	retry       RetryConfig
	temperature float64
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures a Service.
type Option func(*Service)

// WithRetryConfig sets the retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

// WithTemperature sets the sampling temperature sent to the provider.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) {
		s.sleep = sleep
	}
}

// NewService returns a Service backed by provider
func NewService(provider providers.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		retry:    DefaultRetryConfig(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewProvider returns the provider registered under name. An empty name
// falls back to IMGPREFS_PROVIDER, then openai.
func NewProvider(name string) (providers.Provider, error) {
	if name == "" {
		name = os.Getenv("IMGPREFS_PROVIDER")
		if name == "" {
			name = "openai"
		}
	}

	switch name {
	case "openai":
		return openai.New(), nil
	case "ollama":
		return ollama.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// RequestPreference sends the prompt and image, retrying failed attempts with
// linear backoff. The last error is returned once attempts are exhausted.
func (s *Service) RequestPreference(ctx context.Context, model, style string, image *providers.Image) (string, error) {
	maxAttempts := s.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	config := providers.Config{
		Model:       model,
		Temperature: s.temperature,
		Prompt:      BuildPrompt(style),
		Image:       image,
	}

	for attempt := 1; ; attempt++ {
		text, err := s.provider.ExtractText(ctx, config)
		if err == nil {
			return text, nil
		}

		slog.Warn("Attempt failed", "provider", s.provider.Name(), "attempt", attempt, "max_attempts", maxAttempts, "err", err)

		if providers.IsFatal(err) {
			return "", fmt.Errorf("request failed without retry: %w", err)
		}
		if attempt >= maxAttempts {
			return "", fmt.Errorf("request failed after %d attempts: %w", attempt, err)
		}

		if err := s.sleep(ctx, s.retry.Backoff(attempt)); err != nil {
			return "", err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
