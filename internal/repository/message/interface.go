// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

// MessageRepository is the durable store for messages, keyed by conversation.
// Each Append creates exactly one row; turn-level atomicity (user then
// assistant, never a dangling user message) is the orchestrator's job.
type MessageRepository interface {
	Append(ctx context.Context, message *domain.Message) (*domain.Message, error)

	// FindByConversationWithPagination returns one page in ascending
	// timestamp order, oldest first, for transcript reconstruction.
	FindByConversationWithPagination(ctx context.Context, conversationID uint, limit, offset int) ([]domain.Message, int64, error)

	// FindRecent returns up to limit messages in descending timestamp order.
	// Callers reverse the slice when they need chronological order.
	FindRecent(ctx context.Context, conversationID uint, limit int) ([]domain.Message, error)

	CountByConversation(ctx context.Context, conversationID uint) (int64, error)
}
