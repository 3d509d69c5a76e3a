// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"
	"time"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

// ConversationRepository is the durable store for conversation metadata.
// Owner scoping is enforced here: a conversation that exists but belongs to a
// different owner is reported as not found, never as forbidden.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByIDAndOwner(ctx context.Context, conversationID, ownerID uint) (*domain.Conversation, error)
	FindByOwnerWithPagination(ctx context.Context, ownerID uint, limit, offset int) ([]domain.Conversation, int64, error)
	TouchLastMessage(ctx context.Context, conversationID uint, at time.Time) error
	RenameTitle(ctx context.Context, conversationID, ownerID uint, title string) (*domain.Conversation, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}
