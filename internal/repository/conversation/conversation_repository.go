// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/tx"
)

var ErrConversationNotFound = errors.New("conversation not found")

const maxTitleLength = 200

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// dbFrom joins an ambient transaction when the caller opened one.
func (r *gormConversationRepository) dbFrom(ctx context.Context) *gorm.DB {
	return tx.DBFromContext(ctx, r.db)
}

// Create persists a new conversation. StartedAt and LastMessageAt are set
// here so the invariant LastMessageAt >= StartedAt holds from the first row.
func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err := r.validateInput(conversation); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	if conversation.StartedAt.IsZero() {
		conversation.StartedAt = now
	}
	if conversation.LastMessageAt.Before(conversation.StartedAt) {
		conversation.LastMessageAt = conversation.StartedAt
	}

	if err := r.dbFrom(ctx).WithContext(ctx).Create(conversation).Error; err != nil {
		log.Printf("[ConversationRepository] Database error during creation for owner ID %d: %v", conversation.OwnerID, err)
		return nil, errors.New("database error creating conversation")
	}
	return conversation, nil
}

// FindByIDAndOwner loads a conversation scoped to its owner. Both a missing
// row and a row owned by someone else yield ErrConversationNotFound so that
// existence is never leaked across accounts.
func (r *gormConversationRepository) FindByIDAndOwner(ctx context.Context, conversationID, ownerID uint) (*domain.Conversation, error) {
	if conversationID == 0 || ownerID == 0 {
		return nil, ErrConversationNotFound
	}

	var conversation domain.Conversation
	err := r.dbFrom(ctx).WithContext(ctx).
		Where("id = ? AND owner_id = ?", conversationID, ownerID).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		log.Printf("[ConversationRepository] FindByIDAndOwner database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &conversation, nil
}

// FindByOwnerWithPagination returns one page of the owner's conversations,
// most recently active first, ties broken by id ascending for determinism.
func (r *gormConversationRepository) FindByOwnerWithPagination(ctx context.Context, ownerID uint, limit, offset int) ([]domain.Conversation, int64, error) {
	if ownerID == 0 {
		return nil, 0, errors.New("invalid owner ID")
	}
	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.dbFrom(ctx).WithContext(ctx).Model(&domain.Conversation{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		log.Printf("[ConversationRepository] Database error counting conversations for owner ID %d: %v", ownerID, err)
		return nil, 0, errors.New("database error counting conversations")
	}

	var conversations []domain.Conversation
	err := r.dbFrom(ctx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("last_message_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error in paginated query for owner ID %d: %v", ownerID, err)
		return nil, 0, errors.New("database error retrieving conversations")
	}

	return conversations, total, nil
}

// TouchLastMessage bumps the activity timestamp. Safe to call on a
// conversation with zero messages.
func (r *gormConversationRepository) TouchLastMessage(ctx context.Context, conversationID uint, at time.Time) error {
	if conversationID == 0 {
		return errors.New("invalid conversation ID")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	result := r.dbFrom(ctx).WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at)
	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error updating timestamp for conversation ID %d: %v", conversationID, result.Error)
		return errors.New("database error updating conversation timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// RenameTitle updates the title, scoped to the owner.
func (r *gormConversationRepository) RenameTitle(ctx context.Context, conversationID, ownerID uint, title string) (*domain.Conversation, error) {
	if err := r.validateTitle(title); err != nil {
		return nil, fmt.Errorf("title validation: %w", err)
	}

	result := r.dbFrom(ctx).WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND owner_id = ?", conversationID, ownerID).
		Update("title", title)
	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error renaming conversation ID %d: %v", conversationID, result.Error)
		return nil, errors.New("database error renaming conversation")
	}
	if result.RowsAffected == 0 {
		return nil, ErrConversationNotFound
	}
	return r.FindByIDAndOwner(ctx, conversationID, ownerID)
}

func (r *gormConversationRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	if ownerID == 0 {
		return 0, errors.New("invalid owner ID")
	}
	var count int64
	err := r.dbFrom(ctx).WithContext(ctx).Model(&domain.Conversation{}).Where("owner_id = ?", ownerID).Count(&count).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error counting conversations for owner ID %d: %v", ownerID, err)
		return 0, errors.New("database error counting conversations")
	}
	return count, nil
}

func (r *gormConversationRepository) validateInput(conversation *domain.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if conversation.OwnerID == 0 {
		return errors.New("owner ID is required")
	}
	return r.validateTitle(conversation.Title)
}

func (r *gormConversationRepository) validateTitle(title string) error {
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be %d characters or less", maxTitleLength)
	}
	if strings.Contains(title, "<script") || strings.Contains(title, "javascript:") {
		return errors.New("invalid characters detected in title")
	}
	return nil
}
