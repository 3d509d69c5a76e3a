// File: internal/domain/conversation.go
package domain

import "time"

// Conversation represents a single advisor thread owned by one user.
type Conversation struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	OwnerID       uint      `json:"owner_id" gorm:"not null;index"`
	Title         string    `json:"title"`
	StartedAt     time.Time `json:"started_at" gorm:"not null"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"not null;index"`
}
