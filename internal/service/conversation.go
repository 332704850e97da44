package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/session"
	"character-chat/backend/internal/store"
)

// SessionKey is the session-state key holding the conversation id bound to a
// character for the current browser session.
func SessionKey(characterID uint) string {
	return fmt.Sprintf("conversation_%d", characterID)
}

// ConversationService resolves a (session, character) pair to a single active
// conversation, creating one with a greeting when none is bound yet.
type ConversationService struct {
	conversations store.ConversationStore
	messages      store.MessageStore
}

// NewConversationService creates a new conversation service.
func NewConversationService(conversations store.ConversationStore, messages store.MessageStore) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
	}
}

// GetOrCreate returns the conversation bound to the session for the character,
// creating and binding a new one when the session holds no usable binding.
// The boolean reports whether a conversation was created by this call.
//
// A stored id pointing at a conversation owned by a different character (or
// at no conversation at all) is treated as absent; the lookup is always
// filtered by character, not by id alone.
func (s *ConversationService) GetOrCreate(ctx context.Context, sess session.Store, character *models.Character) (*models.Conversation, bool, error) {
	key := SessionKey(character.ID)

	stored, ok, err := sess.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read session binding: %w", err)
	}
	if ok {
		if id, parseErr := strconv.ParseUint(stored, 10, 64); parseErr == nil {
			conversation, lookupErr := s.conversations.GetByIDAndCharacter(ctx, uint(id), character.ID)
			if lookupErr == nil {
				// Existing conversation, returned unchanged; no greeting
				// is re-inserted.
				return conversation, false, nil
			}
			if lookupErr != store.ErrNotFound {
				return nil, false, lookupErr
			}
		}
		// Stale or forged binding falls through to creation.
	}

	conversation := &models.Conversation{
		CharacterID: character.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}

	if greeting := character.GreetingText(); greeting != "" {
		message := &models.Message{
			ConversationID: conversation.ID,
			IsUser:         false,
			Content:        greeting,
			Timestamp:      time.Now(),
		}
		if err := s.messages.Create(ctx, message); err != nil {
			return nil, false, fmt.Errorf("create greeting message: %w", err)
		}
	}

	if err := sess.Set(ctx, key, strconv.FormatUint(uint64(conversation.ID), 10)); err != nil {
		return nil, false, fmt.Errorf("write session binding: %w", err)
	}

	return conversation, true, nil
}

// Transcript returns the conversation's messages in timestamp ascending order.
func (s *ConversationService) Transcript(ctx context.Context, conversationID uint) ([]models.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}

// Resolve looks up a conversation filtered by id and character. Used by the
// legacy form flow, which trusts a posted conversation id.
func (s *ConversationService) Resolve(ctx context.Context, id, characterID uint) (*models.Conversation, error) {
	return s.conversations.GetByIDAndCharacter(ctx, id, characterID)
}
