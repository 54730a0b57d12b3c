package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/imgprefs/internal/providers"
)

func TestExtractTextSendsImage(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"preference\": \"high\"}"}}]}`))
	}))
	defer server.Close()

	o := NewWithClient(server.URL+"/", "test-key", server.Client())
	text, err := o.ExtractText(context.Background(), providers.Config{
		Model:  "gpt-4o",
		Prompt: "rate this",
		Image:  &providers.Image{MIMEType: "image/png", Base64: "AAAA"},
	})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != `{"preference": "high"}` {
		t.Errorf("unexpected text %q", text)
	}

	messages := got["messages"].([]interface{})
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	if len(content) != 2 {
		t.Fatalf("expected text and image parts, got %d", len(content))
	}
	imagePart := content[1].(map[string]interface{})
	url := imagePart["image_url"].(map[string]interface{})["url"].(string)
	if url != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected image url %q", url)
	}
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		status    int
		body      string
		wantFatal bool
	}{
		{name: "missing key", apiKey: "", status: http.StatusOK, wantFatal: true},
		{name: "unauthorized", apiKey: "k", status: http.StatusUnauthorized, body: "bad key", wantFatal: true},
		{name: "server error", apiKey: "k", status: http.StatusInternalServerError, body: "boom", wantFatal: false},
		{name: "no choices", apiKey: "k", status: http.StatusOK, body: `{"choices":[]}`, wantFatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			o := NewWithClient(server.URL, tt.apiKey, server.Client())
			_, err := o.ExtractText(context.Background(), providers.Config{Model: "m", Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if providers.IsFatal(err) != tt.wantFatal {
				t.Errorf("IsFatal = %v, want %v (err: %v)", providers.IsFatal(err), tt.wantFatal, err)
			}
			if tt.body != "" && tt.status != http.StatusOK && !strings.Contains(err.Error(), tt.body) {
				t.Errorf("expected error to include body, got %v", err)
			}
		})
	}
}
