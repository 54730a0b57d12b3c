package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Image is a transport-ready image attached to a prompt
type Image struct {
	MIMEType string
	Data     []byte
	Base64   string
}

// DataURL returns the image as a data URL
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64
}

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       *Image
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	ExtractText(ctx context.Context, config Config) (string, error)
}

// FatalError marks a provider failure that will not succeed on retry.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsFatal returns true if the error should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// StatusError builds the error for a non-200 response. Rate limiting and
// server errors stay retryable, any other status is fatal.
func StatusError(provider string, code int, body []byte) error {
	err := fmt.Errorf("%s API returned status %d: %s", provider, code, string(body))
	if code == http.StatusTooManyRequests || code >= 500 {
		return err
	}
	return NewFatalError(err)
}
