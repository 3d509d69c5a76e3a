// File: internal/services/ai_service.go
package services

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/services/ai"
)

// LLMInvoker is the gateway contract the chat orchestrator depends on.
type LLMInvoker interface {
	Invoke(ctx context.Context, messages []ai.Message) (string, *ai.Usage, error)
}

// AIService is the LLM gateway: it wraps a raw completion provider with the
// per-call timeout and retry policy. It is pure transport; what happens when
// it fails is the orchestrator's decision.
type AIService struct {
	config   *ai.Config
	provider ai.CompletionProvider
	logger   Logger
}

func NewAIService(config *ai.Config, provider ai.CompletionProvider, logger Logger) (*AIService, error) {
	if config == nil {
		return nil, ai.NewConfigError("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, ai.NewConfigError(err.Error())
	}
	if provider == nil {
		return nil, ai.NewConfigError("completion provider is required")
	}
	return &AIService{config: config, provider: provider, logger: logger}, nil
}

// Invoke sends the assembled prompt to the provider. Transient failures (5xx,
// 429, transport errors) are retried with exponential backoff inside the
// configured timeout; everything else short-circuits. On exhaustion the error
// is classified UNAVAILABLE, on deadline expiry TIMEOUT.
func (s *AIService) Invoke(ctx context.Context, messages []ai.Message) (string, *ai.Usage, error) {
	if len(messages) == 0 {
		return "", nil, &ai.AIError{Type: ai.ErrTypeValidation, Operation: "invoke", Message: "empty prompt"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	retryConfig := &ai.RetryConfig{
		MaxAttempts: s.config.MaxRetries,
		BaseDelay:   s.config.BackoffBase,
		MaxDelay:    s.config.BackoffCap,
	}

	var text string
	var usage *ai.Usage
	err := ai.RetryWithBackoff(ctx, retryConfig, "completion", func(ctx context.Context) error {
		t, u, callErr := s.provider.Complete(ctx, messages)
		if callErr != nil {
			return callErr
		}
		text, usage = t, u
		return nil
	})
	if err == nil {
		s.logger.Debug("llm completion succeeded",
			"model", s.config.Model,
			"prompt_messages", len(messages))
		return text, usage, nil
	}

	classified := ai.Classify("completion", err)
	s.logger.Warn("llm completion failed",
		"error_type", string(classified.Type),
		"status", classified.Code,
		"error", classified.Error())

	if classified.Type == ai.ErrTypeTimeout {
		return "", nil, classified
	}
	return "", nil, &ai.AIError{
		Type:      ai.ErrTypeUnavailable,
		Code:      classified.Code,
		Operation: "completion",
		Message:   "provider unavailable after retries",
		Cause:     classified,
	}
}
