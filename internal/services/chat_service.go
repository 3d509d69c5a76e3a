// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/conversation"
	"github.com/healthadvisor/advisor-server/internal/repository/message"
	"github.com/healthadvisor/advisor-server/internal/repository/tx"
	"github.com/healthadvisor/advisor-server/internal/services/chat"
	"github.com/healthadvisor/advisor-server/internal/services/health"
)

// SendResult is what one completed chat turn returns to the caller. Fallback
// is true when the assistant text is the configured unavailability reply
// rather than a real completion.
type SendResult struct {
	Reply        string               `json:"reply"`
	Conversation *domain.Conversation `json:"conversation"`
	Fallback     bool                 `json:"fallback"`
}

// ConversationPage is one page of a user's conversations.
type ConversationPage struct {
	Items []domain.Conversation `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
}

// HistoryPage is one page of a conversation transcript, oldest first.
type HistoryPage struct {
	Items []domain.Message `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
}

// ChatService orchestrates a chat turn: resolve conversation, build health
// context, assemble the prompt, invoke the LLM, post-process, persist the
// turn. It is the only writer that touches both stores together, and it owns
// the per-conversation ordering guarantee.
type ChatService struct {
	config           *chat.Config
	conversationRepo conversation.ConversationRepository
	messageRepo      message.MessageRepository
	txManager        tx.Manager
	llm              LLMInvoker
	assembler        *chat.ContextAssembler
	prompts          *chat.PromptBuilder
	postProcessor    *chat.ResponsePostProcessor
	locks            *chat.ConversationLocks
	logger           Logger
}

func NewChatService(
	config *chat.Config,
	conversationRepo conversation.ConversationRepository,
	messageRepo message.MessageRepository,
	txManager tx.Manager,
	llm LLMInvoker,
	healthProvider health.Provider,
	logger Logger,
) (*ChatService, error) {
	if conversationRepo == nil {
		return nil, chat.NewValidationError("constructor", "conversation repository is required")
	}
	if messageRepo == nil {
		return nil, chat.NewValidationError("constructor", "message repository is required")
	}
	if txManager == nil {
		return nil, chat.NewValidationError("constructor", "transaction manager is required")
	}
	if llm == nil {
		return nil, chat.NewValidationError("constructor", "LLM gateway is required")
	}
	if healthProvider == nil {
		return nil, chat.NewValidationError("constructor", "health context provider is required")
	}
	if config == nil {
		config = chat.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, chat.NewConfigError("constructor", err.Error())
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		config:           config,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		txManager:        txManager,
		llm:              llm,
		assembler:        chat.NewContextAssembler(config, healthProvider, logger),
		prompts:          chat.NewPromptBuilder(config),
		postProcessor:    chat.NewResponsePostProcessor(),
		locks:            chat.NewConversationLocks(),
		logger:           logger,
	}, nil
}

// SendMessage performs one chat turn. A zero conversationID starts a new
// conversation titled from the message. LLM failures do not surface as
// errors: the user message is persisted with a fallback assistant reply and
// the call succeeds, so the conversation stays usable.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uint, text string) (*SendResult, error) {
	if err := s.validateMessage(text); err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, userID, conversationID, text)
	if err != nil {
		return nil, err
	}

	return s.completeTurn(ctx, userID, conv, text)
}

// CreateConversation forces creation of a new conversation and performs its
// first turn, returning both the new conversation and the first reply.
func (s *ChatService) CreateConversation(ctx context.Context, userID uint, title, initialMessage string) (*SendResult, error) {
	if err := s.validateMessage(initialMessage); err != nil {
		return nil, err
	}

	conv, err := s.createConversation(ctx, userID, title, initialMessage)
	if err != nil {
		return nil, err
	}

	return s.completeTurn(ctx, userID, conv, initialMessage)
}

// GetConversations lists the user's conversations, most recently active
// first. Pages are 1-indexed; limit is clamped to the configured maximum.
func (s *ChatService) GetConversations(ctx context.Context, userID uint, page, limit int) (*ConversationPage, error) {
	page, limit = clampPage(page, limit, s.config.ConversationsPageDefault, s.config.ConversationsPageMax)

	items, total, err := s.conversationRepo.FindByOwnerWithPagination(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, chat.NewPersistenceError("get_conversations", "could not list conversations", err)
	}
	if items == nil {
		items = []domain.Conversation{}
	}
	return &ConversationPage{Items: items, Total: total, Page: page}, nil
}

// GetHistory returns one transcript page, oldest first, scoped to the owner.
func (s *ChatService) GetHistory(ctx context.Context, userID, conversationID uint, page, limit int) (*HistoryPage, error) {
	if _, err := s.conversationRepo.FindByIDAndOwner(ctx, conversationID, userID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, chat.NewNotFoundError(userID, conversationID)
		}
		return nil, chat.NewPersistenceError("get_history", "could not load conversation", err)
	}

	page, limit = clampPage(page, limit, s.config.HistoryPageDefault, s.config.HistoryPageMax)

	items, total, err := s.messageRepo.FindByConversationWithPagination(ctx, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, chat.NewPersistenceError("get_history", "could not list messages", err)
	}
	if items == nil {
		items = []domain.Message{}
	}
	return &HistoryPage{Items: items, Total: total, Page: page}, nil
}

// RenameConversation updates a conversation title, scoped to the owner.
func (s *ChatService) RenameConversation(ctx context.Context, userID, conversationID uint, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, chat.NewValidationError("rename_conversation", "title cannot be empty")
	}

	conv, err := s.conversationRepo.RenameTitle(ctx, conversationID, userID, title)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, chat.NewNotFoundError(userID, conversationID)
		}
		return nil, chat.NewPersistenceError("rename_conversation", "could not rename conversation", err)
	}
	return conv, nil
}

func (s *ChatService) validateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return chat.NewValidationError("send_message", "message cannot be empty")
	}
	if utf8.RuneCountInString(text) > s.config.MaxMessageLength {
		return chat.NewValidationError("send_message",
			"message exceeds maximum length of "+strconv.Itoa(s.config.MaxMessageLength)+" characters")
	}
	return nil
}

func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID uint, text string) (*domain.Conversation, error) {
	if conversationID == 0 {
		return s.createConversation(ctx, userID, "", text)
	}

	conv, err := s.conversationRepo.FindByIDAndOwner(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, chat.NewNotFoundError(userID, conversationID)
		}
		return nil, chat.NewPersistenceError("resolve_conversation", "could not load conversation", err)
	}
	return conv, nil
}

func (s *ChatService) createConversation(ctx context.Context, userID uint, title, firstMessage string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = chat.TruncateText(strings.TrimSpace(firstMessage), s.config.TitleMaxLength)
	}
	if title == "" {
		title = "New conversation"
	}

	conv, err := s.conversationRepo.Create(ctx, &domain.Conversation{OwnerID: userID, Title: title})
	if err != nil {
		return nil, chat.NewPersistenceError("create_conversation", "could not create conversation", err)
	}
	s.logger.Info("conversation created", "conversation_id", conv.ID, "owner_id", userID)
	return conv, nil
}

// completeTurn runs BuildContext through TouchConversation for a resolved
// conversation.
func (s *ChatService) completeTurn(ctx context.Context, userID uint, conv *domain.Conversation, text string) (*SendResult, error) {
	// Abort before any side effects if the caller is already gone.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contextBlock := s.assembler.Build(ctx, userID)

	recent, err := s.messageRepo.FindRecent(ctx, conv.ID, s.config.HistoryDepth)
	if err != nil {
		return nil, chat.NewPersistenceError("assemble_prompt", "could not load recent messages", err)
	}
	reverseMessages(recent)

	prompt := s.prompts.Assemble(contextBlock, recent, text)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply, usage, llmErr := s.llm.Invoke(ctx, prompt)

	fallback := llmErr != nil
	var finalText string
	if fallback {
		// The raw error never reaches the transcript; the turn completes
		// with the fixed unavailability reply so the failure is visible in
		// history instead of surfacing as a broken call.
		s.logger.Warn("llm invocation failed, using fallback reply",
			"conversation_id", conv.ID,
			"user_id", userID,
			"error", llmErr.Error())
		finalText = s.config.FallbackReply
	} else {
		finalText = s.postProcessor.Process(reply)
	}

	metadata := map[string]string{}
	if usage != nil {
		metadata["model"] = usage.Model
		metadata["total_tokens"] = strconv.Itoa(usage.TotalTokens)
	}
	if fallback {
		metadata["fallback"] = "true"
	}

	// Once the provider has been invoked the turn is committed: the input is
	// persisted even when the caller has already disconnected, so a mid-flight
	// cancellation completes as a fallback turn instead of dropping the message.
	if err := s.persistTurn(context.WithoutCancel(ctx), userID, conv, text, finalText, metadata); err != nil {
		return nil, err
	}

	s.logger.Info("chat turn completed",
		"conversation_id", conv.ID,
		"user_id", userID,
		"fallback", fallback)

	return &SendResult{Reply: finalText, Conversation: conv, Fallback: fallback}, nil
}

// persistTurn appends the user/assistant pair and touches the conversation
// under the per-conversation lock, so concurrent turns on one conversation
// never interleave. The lock is acquired only here, after the conversation is
// resolved; creation races are the store's concern. The three writes run in
// one transaction: either the whole turn lands or none of it does, so a store
// failure never leaves a user message without its assistant entry.
func (s *ChatService) persistTurn(ctx context.Context, userID uint, conv *domain.Conversation, userText, assistantText string, metadata map[string]string) error {
	unlock := s.locks.Lock(conv.ID)
	defer unlock()

	userTs := time.Now().UTC()
	// Timestamps are strictly increasing within a conversation; bump past the
	// latest persisted message if the clock has not advanced.
	if latest, err := s.messageRepo.FindRecent(ctx, conv.ID, 1); err == nil && len(latest) == 1 {
		if !userTs.After(latest[0].Timestamp) {
			userTs = latest[0].Timestamp.Add(time.Millisecond)
		}
	}
	assistantTs := time.Now().UTC()
	if !assistantTs.After(userTs) {
		assistantTs = userTs.Add(time.Millisecond)
	}

	txErr := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.messageRepo.Append(ctx, &domain.Message{
			ConversationID: conv.ID,
			UserID:         userID,
			Role:           domain.RoleUser,
			Content:        strings.TrimSpace(userText),
			Timestamp:      userTs,
		}); err != nil {
			return chat.NewPersistenceError("persist_turn", "could not persist user message", err)
		}

		if _, err := s.messageRepo.Append(ctx, &domain.Message{
			ConversationID: conv.ID,
			UserID:         userID,
			Role:           domain.RoleAssistant,
			Content:        assistantText,
			Timestamp:      assistantTs,
			Metadata:       metadata,
		}); err != nil {
			return chat.NewPersistenceError("persist_turn", "could not persist assistant message", err)
		}

		if err := s.conversationRepo.TouchLastMessage(ctx, conv.ID, assistantTs); err != nil {
			return chat.NewPersistenceError("persist_turn", "could not update conversation timestamp", err)
		}
		return nil
	})
	if txErr != nil {
		var chatErr *chat.ChatError
		if errors.As(txErr, &chatErr) {
			return chatErr
		}
		return chat.NewPersistenceError("persist_turn", "could not persist turn", txErr)
	}

	conv.LastMessageAt = assistantTs
	return nil
}

func clampPage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func reverseMessages(messages []domain.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
