package jetify

import (
	"testing"

	jetapi "go.jetify.com/ai/api"
)

func TestNewClientDefaultsModelPerProvider(t *testing.T) {
	openai, err := NewClient("openai", "sk-test", "", "", nil)
	if err != nil {
		t.Fatalf("openai client: %v", err)
	}
	if openai.Model() != defaultOpenAIModel {
		t.Fatalf("expected %s, got %s", defaultOpenAIModel, openai.Model())
	}

	anthropic, err := NewClient("Anthropic", "sk-ant", "claude-sonnet-4-5", "https://proxy.local/", nil)
	if err != nil {
		t.Fatalf("anthropic client: %v", err)
	}
	if anthropic.Model() != "claude-sonnet-4-5" {
		t.Fatalf("unexpected model %s", anthropic.Model())
	}
}

func TestNewClientRejectsUnknownProviderAndMissingKey(t *testing.T) {
	if _, err := NewClient("gemini", "k", "", "", nil); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := NewClient("openai", "", "", "", nil); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"https://api.example.com", "https://api.example.com/v1"},
		{"https://api.example.com/v1/", "https://api.example.com/v1"},
		{"https://gw.example.com/openai", "https://gw.example.com/openai/v1"},
	}
	for _, tt := range tests {
		if got := normalizeOpenAIBaseURL(tt.in); got != tt.want {
			t.Fatalf("normalizeOpenAIBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFromResponseRejectsEmpty(t *testing.T) {
	if _, err := textFromResponse(nil); err == nil {
		t.Fatalf("expected error for nil response")
	}
	if _, err := textFromResponse(&jetapi.Response{}); err == nil {
		t.Fatalf("expected error for empty response")
	}
}
