package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docaudit-backend/internal/llm"
)

func TestGenerateSendsConfigAndReturnsText(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key-1" {
			t.Fatalf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":"},{"text":"\"ok\"}"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`))
	}))
	defer srv.Close()

	client, err := NewClient("key-1", "", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	text, err := client.Generate(context.Background(), "hello", llm.DefaultGenerationConfig)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"summary":"ok"}` {
		t.Fatalf("unexpected text %q", text)
	}
	if got.GenerationConfig.Temperature != 0.1 || got.GenerationConfig.TopK != 32 || got.GenerationConfig.TopP != 0.95 || got.GenerationConfig.MaxOutputTokens != 8192 {
		t.Fatalf("unexpected generation config %+v", got.GenerationConfig)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "hello" {
		t.Fatalf("unexpected contents %+v", got.Contents)
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client, _ := NewClient("bad", "gemini-1.5-flash", WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), "hello", llm.DefaultGenerationConfig)
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestGenerateBlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	client, _ := NewClient("key", "gemini-1.5-flash", WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), "hello", llm.DefaultGenerationConfig)
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected blocked error, got %v", err)
	}
}

func TestGenerateHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := NewClient("key", "gemini-1.5-flash", WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "hello", llm.DefaultGenerationConfig)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "m"); err == nil {
		t.Fatalf("expected missing key error")
	}
}
