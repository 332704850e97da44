// Package store provides the persistence layer for characters, conversations
// and messages. Services depend on the narrow interfaces declared here so
// unit tests can substitute in-memory fakes.
package store

import (
	"context"
	"errors"

	"character-chat/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CharacterStore persists Character records.
type CharacterStore interface {
	Create(ctx context.Context, character *models.Character) error
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Character, error)
	List(ctx context.Context) ([]models.Character, error)
}

// ConversationStore persists Conversation records.
type ConversationStore interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	// GetByIDAndCharacter resolves a conversation filtered by both id and
	// owning character. A conversation owned by a different character is
	// ErrNotFound, never returned.
	GetByIDAndCharacter(ctx context.Context, id, characterID uint) (*models.Conversation, error)
}

// MessageStore persists Message records. Messages are append-only.
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	// ListByConversation returns all messages in timestamp ascending order.
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
	// ListRecent returns at most limit messages in timestamp descending order.
	ListRecent(ctx context.Context, conversationID uint, limit int) ([]models.Message, error)
}

// UserStore persists staff accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
