// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Complete performs one chat-completion attempt against the provider.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, *Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		MaxTokens:   p.config.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", nil, Classify("completion", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		// A malformed response is not worth retrying.
		return "", nil, &AIError{
			Type:      ErrTypeValidation,
			Operation: "completion",
			Message:   "empty completion response",
		}
	}

	usage := &Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            resp.Model,
	}
	return resp.Choices[0].Message.Content, usage, nil
}
