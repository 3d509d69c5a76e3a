// File: internal/domain/message.go
package domain

import "time"

// Message roles. The assistant acts on the owner's behalf, so UserID equals
// the conversation owner for every role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry in a conversation. Messages are created in
// user/assistant pairs and are immutable once written.
type Message struct {
	ID             uint              `json:"id" gorm:"primarykey"`
	ConversationID uint              `json:"conversation_id" gorm:"not null;index"`
	UserID         uint              `json:"user_id" gorm:"not null"`
	Role           string            `json:"role" gorm:"not null"`
	Content        string            `json:"content" gorm:"not null"`
	Timestamp      time.Time         `json:"timestamp" gorm:"not null;index"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
}
