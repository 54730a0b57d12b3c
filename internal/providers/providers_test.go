package providers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantFatal bool
	}{
		{name: "rate limited is retryable", code: http.StatusTooManyRequests, wantFatal: false},
		{name: "server error is retryable", code: http.StatusBadGateway, wantFatal: false},
		{name: "unauthorized is fatal", code: http.StatusUnauthorized, wantFatal: true},
		{name: "bad request is fatal", code: http.StatusBadRequest, wantFatal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StatusError("openai", tt.code, []byte("nope"))
			if IsFatal(err) != tt.wantFatal {
				t.Errorf("IsFatal = %v, want %v (err: %v)", IsFatal(err), tt.wantFatal, err)
			}
		})
	}
}

func TestIsFatalThroughWrapping(t *testing.T) {
	base := errors.New("missing key")
	err := fmt.Errorf("attempt 1: %w", NewFatalError(base))

	if !IsFatal(err) {
		t.Error("expected wrapped fatal error to be detected")
	}
	if !errors.Is(err, base) {
		t.Error("expected fatal error to unwrap to its cause")
	}
}

func TestImageDataURL(t *testing.T) {
	img := &Image{MIMEType: "image/png", Base64: "AAAA"}
	if got := img.DataURL(); got != "data:image/png;base64,AAAA" {
		t.Errorf("DataURL() = %q", got)
	}
}
