package service

import (
	"context"
	"strconv"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/session"
	"character-chat/backend/internal/store"

	apperrors "character-chat/backend/pkg/errors"
)

// AccessGuard validates that a conversation referenced by an API request was
// started by the requesting session for the named character. The check is
// session-bound, not identity-bound: the browser session is the sole access
// token for chat.
type AccessGuard struct {
	characters    store.CharacterStore
	conversations store.ConversationStore
}

// NewAccessGuard creates a new access guard.
func NewAccessGuard(characters store.CharacterStore, conversations store.ConversationStore) *AccessGuard {
	return &AccessGuard{
		characters:    characters,
		conversations: conversations,
	}
}

// Authorize resolves the character and conversation named by the raw request
// values, rejecting with the error taxonomy of the API surface:
// unknown character or conversation → not found; malformed ids → bad request;
// missing or mismatched session binding → forbidden.
//
// Each id is parsed before it is looked up, so a malformed character id is
// rejected as a bad request rather than treated as an unknown character.
func (g *AccessGuard) Authorize(ctx context.Context, sess session.Store, characterID, conversationID string) (*models.Character, *models.Conversation, error) {
	charID, err := strconv.ParseUint(characterID, 10, 64)
	if err != nil {
		return nil, nil, apperrors.InvalidID("character_id")
	}

	character, err := g.characters.GetByID(ctx, uint(charID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil, apperrors.CharacterNotFound(uint(charID))
		}
		return nil, nil, err
	}

	convID, err := strconv.ParseUint(conversationID, 10, 64)
	if err != nil {
		return nil, nil, apperrors.InvalidID("conversation_id")
	}

	stored, ok, err := sess.Get(ctx, SessionKey(character.ID))
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.NoSessionBinding()
	}
	if stored != strconv.FormatUint(convID, 10) {
		// Rejected even when the row exists and belongs to the same
		// character: the session did not start it.
		return nil, nil, apperrors.ConversationMismatch()
	}

	conversation, err := g.conversations.GetByIDAndCharacter(ctx, uint(convID), character.ID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil, apperrors.ConversationNotFound(uint(convID))
		}
		return nil, nil, err
	}

	return character, conversation, nil
}
