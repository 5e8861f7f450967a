package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
port: "9090"
env: production
comparison_quota_policy: metered
plans:
  free: 3
database:
  url: postgres://file/db
ai:
  provider: anthropic
  model: claude-haiku-4-5
  timeout: 50s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port from file, got %q", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Fatalf("expected env DATABASE_URL to win, got %q", cfg.DatabaseURL)
	}
	if cfg.AIProvider != "anthropic" {
		t.Fatalf("expected anthropic provider, got %q", cfg.AIProvider)
	}
	if cfg.AITimeout != 50*time.Second {
		t.Fatalf("expected 50s timeout, got %s", cfg.AITimeout)
	}
	if cfg.ComparisonQuotaPolicy != "metered" {
		t.Fatalf("expected metered policy, got %q", cfg.ComparisonQuotaPolicy)
	}
	if cfg.PlanLimits["free"] != 3 {
		t.Fatalf("expected free plan override 3, got %d", cfg.PlanLimits["free"])
	}
}

func TestParseAITimeoutClamps(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "", want: 45 * time.Second},
		{raw: "5s", want: 30 * time.Second},
		{raw: "2m", want: 60 * time.Second},
		{raw: "40", want: 40 * time.Second},
		{raw: "bogus", want: 45 * time.Second},
	}
	for _, tt := range tests {
		if got := parseAITimeout(tt.raw); got != tt.want {
			t.Fatalf("parseAITimeout(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseEnvLine(t *testing.T) {
	key, val, ok := parseEnvLine(`export AI_MODEL="gemini-1.5-flash"`)
	if !ok || key != "AI_MODEL" || val != "gemini-1.5-flash" {
		t.Fatalf("unexpected parse: %q %q %v", key, val, ok)
	}
	if _, _, ok := parseEnvLine("# comment"); ok {
		t.Fatalf("expected comment to be skipped")
	}
}
