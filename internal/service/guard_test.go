package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"character-chat/backend/internal/models"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardFixture struct {
	guard        *AccessGuard
	character    *models.Character
	conversation *models.Conversation
	sess         *fakeSession
}

// newGuardFixture sets up one character with a conversation bound to sess.
func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()
	characters := newFakeCharacterStore()
	conversations := newFakeConversationStore()

	character := &models.Character{Name: "Anna", Description: "You are Anna."}
	require.NoError(t, characters.Create(context.Background(), character))

	conversation := &models.Conversation{CharacterID: character.ID}
	require.NoError(t, conversations.Create(context.Background(), conversation))

	sess := newFakeSession()
	require.NoError(t, sess.Set(context.Background(), SessionKey(character.ID), strconv.FormatUint(uint64(conversation.ID), 10)))

	return guardFixture{
		guard:        NewAccessGuard(characters, conversations),
		character:    character,
		conversation: conversation,
		sess:         sess,
	}
}

func TestAuthorizeAccepts(t *testing.T) {
	f := newGuardFixture(t)

	character, conversation, err := f.guard.Authorize(context.Background(), f.sess, "1", "1")
	require.NoError(t, err)
	assert.Equal(t, f.character.ID, character.ID)
	assert.Equal(t, f.conversation.ID, conversation.ID)
}

func TestAuthorizeRejections(t *testing.T) {
	tests := []struct {
		name           string
		characterID    string
		conversationID string
		sessionValue   string // binding for character 1; empty means none
		wantStatus     int
		wantCode       string
	}{
		{
			name:           "malformed character id",
			characterID:    "abc",
			conversationID: "1",
			sessionValue:   "1",
			wantStatus:     http.StatusBadRequest,
			wantCode:       "INVALID_ID",
		},
		{
			name:           "unknown character",
			characterID:    "99",
			conversationID: "1",
			sessionValue:   "1",
			wantStatus:     http.StatusNotFound,
			wantCode:       "CHARACTER_NOT_FOUND",
		},
		{
			name:           "malformed conversation id",
			characterID:    "1",
			conversationID: "abc",
			sessionValue:   "1",
			wantStatus:     http.StatusBadRequest,
			wantCode:       "INVALID_ID",
		},
		{
			name:           "no session binding",
			characterID:    "1",
			conversationID: "1",
			sessionValue:   "",
			wantStatus:     http.StatusForbidden,
			wantCode:       "NO_SESSION_BINDING",
		},
		{
			name:           "binding points elsewhere",
			characterID:    "1",
			conversationID: "1",
			sessionValue:   "42",
			wantStatus:     http.StatusForbidden,
			wantCode:       "CONVERSATION_MISMATCH",
		},
		{
			name:           "binding matches a missing row",
			characterID:    "1",
			conversationID: "42",
			sessionValue:   "42",
			wantStatus:     http.StatusNotFound,
			wantCode:       "CONVERSATION_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t)

			sess := newFakeSession()
			if tt.sessionValue != "" {
				require.NoError(t, sess.Set(context.Background(), SessionKey(1), tt.sessionValue))
			}

			_, _, err := f.guard.Authorize(context.Background(), sess, tt.characterID, tt.conversationID)
			require.Error(t, err)

			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok, "expected AppError, got %T", err)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

// A conversation the character owns is still rejected when the session bound
// a different one: the session, not the row, is the access token.
func TestAuthorizeRejectsOwnCharacterForeignConversation(t *testing.T) {
	f := newGuardFixture(t)

	// Another session starts a second conversation with the same character.
	other := &models.Conversation{CharacterID: f.character.ID}
	require.NoError(t, f.guard.conversations.(*fakeConversationStore).Create(context.Background(), other))

	_, _, err := f.guard.Authorize(context.Background(), f.sess, "1", strconv.FormatUint(uint64(other.ID), 10))
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "CONVERSATION_MISMATCH", appErr.Code)
}
