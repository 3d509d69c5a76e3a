// File: internal/services/ai/interface.go
package ai

import "context"

// Message is one role-tagged entry of the prompt sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Usage carries the provider's token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// CompletionProvider is the raw transport to one LLM endpoint. A single call
// makes a single attempt; timeout and retry policy live above it.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []Message) (string, *Usage, error)
}
