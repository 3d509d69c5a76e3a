// File: internal/services/chat/config.go
package chat

import "fmt"

type Config struct {
	// Prompt Assembly
	HistoryDepth          int // most recent persisted messages included in the prompt
	ContextCapPerCategory int // health records per category in the context block
	SystemInstructions    string

	// Input Validation
	MaxMessageLength int // runes; longer input is rejected, never truncated
	TitleMaxLength   int // runes used when deriving a title from the first message

	// History Pagination (transcript listing, independent of HistoryDepth)
	HistoryPageDefault int
	HistoryPageMax     int

	// Conversation Listing Pagination
	ConversationsPageDefault int
	ConversationsPageMax     int

	// Failure Policy
	FallbackReply string // assistant text persisted when the LLM is unavailable
}

func (c *Config) Validate() error {
	if c.HistoryDepth <= 0 {
		return fmt.Errorf("history_depth must be positive")
	}
	if c.ContextCapPerCategory <= 0 {
		return fmt.Errorf("context_cap_per_category must be positive")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max_message_length must be positive")
	}
	if c.HistoryPageDefault <= 0 || c.HistoryPageDefault > c.HistoryPageMax {
		return fmt.Errorf("history_page_default must be in [1, history_page_max]")
	}
	if c.ConversationsPageDefault <= 0 || c.ConversationsPageDefault > c.ConversationsPageMax {
		return fmt.Errorf("conversations_page_default must be in [1, conversations_page_max]")
	}
	if c.FallbackReply == "" {
		return fmt.Errorf("fallback_reply is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		HistoryDepth:          10,
		ContextCapPerCategory: 5,
		SystemInstructions: "You are a friendly health advisor. Use the user's recent " +
			"health data below to personalize your answers. Be concise, practical and " +
			"encouraging. Never diagnose; suggest seeing a healthcare provider for " +
			"anything serious.",
		MaxMessageLength:         500,
		TitleMaxLength:           50,
		HistoryPageDefault:       20,
		HistoryPageMax:           50,
		ConversationsPageDefault: 10,
		ConversationsPageMax:     50,
		FallbackReply: "I'm having trouble reaching the advice service right now. " +
			"Your message has been saved, please try again in a moment.",
	}
}
