// Package ai wraps the interchangeable text-completion providers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"viral-scout/internal/config"
)

// Completer is the prompt/response contract the pipeline depends on.
type Completer interface {
	// Complete sends prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("ai: empty response")

const (
	temperature    = 0.2
	defaultTimeout = 15 * time.Second
)

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

// New builds the configured provider. It returns (nil, nil) when the selected
// provider has no credential, which the pipeline treats as "no AI".
func New(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	timeout := config.Duration(cfg.Timeout)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			return nil, nil
		}
		c, err := NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
			return nil, nil
		}
		c, err := NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
