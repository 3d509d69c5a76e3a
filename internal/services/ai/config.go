// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Provider Configuration
	APIKey  string
	BaseURL string
	Model   string

	// Failure Handling
	Timeout     time.Duration // overall budget for one Invoke, retries included
	MaxRetries  int           // total attempts against the provider
	BackoffBase time.Duration // first retry delay, doubled per attempt
	BackoffCap  time.Duration // upper bound on a single retry delay

	// Model Parameters
	Temperature float32
	TopP        float32
	MaxTokens   int
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("backoff base must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 1 * time.Second,
		BackoffCap:  8 * time.Second,
		Temperature: 0.2, // low for health guidance accuracy
		TopP:        0.9,
		MaxTokens:   1024,
	}
}
