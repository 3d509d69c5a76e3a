// File: internal/services/ai/retry.go
package ai

import (
	"context"
	"time"
)

// RetryConfig defines retry behavior for provider calls.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryWithBackoff executes fn up to MaxAttempts times with exponential
// backoff (BaseDelay doubled per attempt, capped at MaxDelay). Delays honor
// the caller's context, so retries never extend the overall deadline.
// Non-retryable classified errors short-circuit immediately.
func RetryWithBackoff(ctx context.Context, config *RetryConfig, operation string, fn func(ctx context.Context) error) error {
	var lastErr *AIError

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = Classify(operation, err)
		if !lastErr.Retryable() {
			return lastErr
		}

		// Don't wait after the last attempt.
		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return Classify(operation, ctx.Err())
			case <-time.After(backoffDelay(config, attempt)):
			}
		}
	}

	return lastErr
}

func backoffDelay(config *RetryConfig, attempt int) time.Duration {
	delay := config.BaseDelay << uint(attempt)
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}
