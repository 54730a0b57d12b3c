package gemini

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/imgprefs/internal/providers"
)

func TestExtractTextRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New().ExtractText(context.Background(), providers.Config{Model: "gemini-1.5-flash", Prompt: "rate this"})
	if err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}
	if !providers.IsFatal(err) {
		t.Errorf("missing API key should not be retried, got %v", err)
	}
}

func TestParts(t *testing.T) {
	tests := []struct {
		name     string
		config   providers.Config
		expected []genai.Part
	}{
		{
			name:     "prompt only",
			config:   providers.Config{Prompt: "rate this"},
			expected: []genai.Part{genai.Text("rate this")},
		},
		{
			name: "prompt and image",
			config: providers.Config{
				Prompt: "rate this",
				Image:  &providers.Image{MIMEType: "image/webp", Data: []byte("RIFF"), Base64: "UklGRg=="},
			},
			expected: []genai.Part{
				genai.Text("rate this"),
				genai.Blob{MIMEType: "image/webp", Data: []byte("RIFF")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parts(tt.config)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		expected string
		wantErr  bool
	}{
		{
			name: "first text part",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"preference": "high"}`)}}},
			}},
			expected: `{"preference": "high"}`,
		},
		{name: "nil response", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name:    "empty content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: true,
		},
		{
			name: "non-text part",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("responseText failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
