package analyses

import (
	"context"
	"errors"
	"time"

	"docaudit-backend/internal/llm"
)

// DefaultAITimeout bounds a single model call when none is configured.
const DefaultAITimeout = 45 * time.Second

// AIClient sends a prompt to the model and parses the reply into a Result.
type AIClient struct {
	LLM     llm.Client
	Config  llm.GenerationConfig
	Timeout time.Duration
	Now     func() time.Time
}

// NewAIClient constructs an AIClient with the default generation config.
func NewAIClient(client llm.Client, timeout time.Duration) *AIClient {
	return &AIClient{LLM: client, Config: llm.DefaultGenerationConfig, Timeout: timeout, Now: time.Now}
}

// Analyze runs one model call without retries. Deadline expiry yields ErrAITimeout,
// other transport failures an *AIServiceError, and unusable output ErrParse.
func (c *AIClient) Analyze(ctx context.Context, prompt string) (Result, error) {
	if c == nil || c.LLM == nil {
		return Result{}, &AIServiceError{Err: llm.ErrNotConfigured}
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}

	started := now()
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := c.LLM.Generate(callCtx, prompt, c.Config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Result{}, ErrAITimeout
		}
		return Result{}, &AIServiceError{Err: err}
	}

	result, err := ParseResult(raw)
	if err != nil {
		return Result{}, err
	}
	result.ProcessingTimeMs = int(now().Sub(started).Milliseconds())
	return result, nil
}
