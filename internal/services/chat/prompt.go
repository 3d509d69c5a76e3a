// File: internal/services/chat/prompt.go
package chat

import (
	"strings"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/services/ai"
)

// PromptBuilder composes the ordered message list sent to the LLM: one system
// message (instructions plus the embedded context block), then the most
// recent history messages in chronological order, then the new user message.
type PromptBuilder struct {
	config *Config
}

func NewPromptBuilder(config *Config) *PromptBuilder {
	return &PromptBuilder{config: config}
}

// Assemble builds the prompt. history must be in chronological order (oldest
// first); only the trailing HistoryDepth entries are included, bounding token
// usage no matter how long the conversation has grown. Input length
// validation happens before this stage; Assemble never truncates user text.
func (b *PromptBuilder) Assemble(contextBlock string, history []domain.Message, newUserText string) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+2)

	system := b.config.SystemInstructions
	if contextBlock != "" {
		system = system + "\n\n" + contextBlock
	}
	messages = append(messages, ai.Message{Role: domain.RoleSystem, Content: system})

	if depth := b.config.HistoryDepth; len(history) > depth {
		history = history[len(history)-depth:]
	}
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	messages = append(messages, ai.Message{Role: domain.RoleUser, Content: strings.TrimSpace(newUserText)})
	return messages
}
