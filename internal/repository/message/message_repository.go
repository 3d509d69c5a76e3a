// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/tx"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// dbFrom joins an ambient transaction when the caller opened one.
func (r *gormMessageRepository) dbFrom(ctx context.Context) *gorm.DB {
	return tx.DBFromContext(ctx, r.db)
}

// Append writes a single message row. The caller supplies the timestamp so
// that ordering within a conversation is decided under the conversation lock,
// not by row-insert time.
func (r *gormMessageRepository) Append(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateInput(message); err != nil {
		return nil, err
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	if err := r.dbFrom(ctx).WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error appending message for conversation ID %d: %v", message.ConversationID, err)
		return nil, errors.New("database error appending message")
	}
	return message, nil
}

func (r *gormMessageRepository) FindByConversationWithPagination(ctx context.Context, conversationID uint, limit, offset int) ([]domain.Message, int64, error) {
	if conversationID == 0 {
		return nil, 0, errors.New("invalid conversation ID")
	}
	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.dbFrom(ctx).WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID).Count(&total).Error; err != nil {
		log.Printf("[MessageRepository] Database error counting messages for conversation ID %d: %v", conversationID, err)
		return nil, 0, errors.New("database error counting messages")
	}

	var messages []domain.Message
	err := r.dbFrom(ctx).WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error in paginated query for conversation ID %d: %v", conversationID, err)
		return nil, 0, errors.New("database error retrieving messages")
	}

	return messages, total, nil
}

func (r *gormMessageRepository) FindRecent(ctx context.Context, conversationID uint, limit int) ([]domain.Message, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var messages []domain.Message
	err := r.dbFrom(ctx).WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding recent messages for conversation ID %d: %v", conversationID, err)
		return nil, errors.New("database error finding recent messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByConversation(ctx context.Context, conversationID uint) (int64, error) {
	if conversationID == 0 {
		return 0, errors.New("invalid conversation ID")
	}
	var count int64
	err := r.dbFrom(ctx).WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for conversation ID %d: %v", conversationID, err)
		return 0, errors.New("database error counting messages")
	}
	return count, nil
}

func (r *gormMessageRepository) validateInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ConversationID == 0 {
		return errors.New("conversation ID is required")
	}
	if message.UserID == 0 {
		return errors.New("user ID is required")
	}
	switch message.Role {
	case domain.RoleUser, domain.RoleAssistant, domain.RoleSystem:
	default:
		return errors.New("invalid message role")
	}
	if message.Content == "" {
		return errors.New("message content cannot be empty")
	}
	return nil
}
