package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"docaudit-backend/internal/llm"
)

type stubLLM struct {
	reply string
	err   error
	block bool
	calls int
	cfg   llm.GenerationConfig
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	s.calls++
	s.cfg = cfg
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func TestAIClientSuccessSetsProcessingTime(t *testing.T) {
	stub := &stubLLM{reply: `{"summary":"ok","confidence_score":0.8}`}
	client := NewAIClient(stub, time.Second)
	ticks := []time.Time{time.Unix(100, 0), time.Unix(100, 0).Add(1500 * time.Millisecond)}
	client.Now = func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]
		return now
	}

	res, err := client.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.ProcessingTimeMs != 1500 {
		t.Fatalf("expected 1500ms, got %d", res.ProcessingTimeMs)
	}
	if stub.cfg != llm.DefaultGenerationConfig {
		t.Fatalf("expected default generation config, got %+v", stub.cfg)
	}
}

func TestAIClientTimeoutIsDistinct(t *testing.T) {
	client := NewAIClient(&stubLLM{block: true}, 20*time.Millisecond)

	_, err := client.Analyze(context.Background(), "prompt")
	if !errors.Is(err, ErrAITimeout) {
		t.Fatalf("expected ErrAITimeout, got %v", err)
	}
	if errors.Is(err, ErrAIService) {
		t.Fatalf("timeout must not match ErrAIService")
	}
}

func TestAIClientServiceError(t *testing.T) {
	stub := &stubLLM{err: errors.New("quota exhausted upstream")}
	client := NewAIClient(stub, time.Second)

	_, err := client.Analyze(context.Background(), "prompt")
	if !errors.Is(err, ErrAIService) {
		t.Fatalf("expected ErrAIService, got %v", err)
	}
	if got := err.Error(); got != "AI analysis failed: quota exhausted upstream" {
		t.Fatalf("unexpected message %q", got)
	}
	if stub.calls != 1 {
		t.Fatalf("expected a single call without retries, got %d", stub.calls)
	}
}

func TestAIClientParseError(t *testing.T) {
	client := NewAIClient(&stubLLM{reply: "no json here"}, time.Second)
	if _, err := client.Analyze(context.Background(), "prompt"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestAIClientPlaceholder(t *testing.T) {
	client := NewAIClient(llm.PlaceholderClient{}, time.Second)
	_, err := client.Analyze(context.Background(), "prompt")
	if !errors.Is(err, ErrAIService) || !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected wrapped ErrNotConfigured, got %v", err)
	}
}
