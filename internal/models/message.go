package models

import (
	"time"
)

// MaxMessageLength caps user-submitted message content.
const MaxMessageLength = 2000

// Message is one turn in a conversation. Messages are append-only and always
// read in timestamp ascending order.
type Message struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ConversationID uint      `json:"conversation_id" gorm:"index;not null"`
	IsUser         bool      `json:"is_user"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
