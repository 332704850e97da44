package models

import (
	"time"
)

// Conversation binds one browser session to one character. It is created on
// first contact and never explicitly closed; deleting the owning character
// cascades down to it and its messages.
type Conversation struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CharacterID uint      `json:"character_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`

	Messages []Message `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
