package service

import (
	"context"
	"strconv"
	"testing"

	"character-chat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationFixture(t *testing.T, character *models.Character) (*ConversationService, *fakeCharacterStore, *fakeConversationStore, *fakeMessageStore) {
	t.Helper()
	characters := newFakeCharacterStore()
	conversations := newFakeConversationStore()
	messages := newFakeMessageStore()
	require.NoError(t, characters.Create(context.Background(), character))
	return NewConversationService(conversations, messages), characters, conversations, messages
}

func TestGetOrCreateInsertsGreeting(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna.", Greeting: "Hi, I am Anna!"}
	svc, _, _, messages := newConversationFixture(t, character)
	sess := newFakeSession()

	conversation, created, err := svc.GetOrCreate(context.Background(), sess, character)
	require.NoError(t, err)
	assert.True(t, created)

	transcript, err := messages.ListByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.False(t, transcript[0].IsUser)
	assert.Equal(t, "Hi, I am Anna!", transcript[0].Content)

	stored, ok, err := sess.Get(context.Background(), SessionKey(character.ID))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, strconv.FormatUint(uint64(conversation.ID), 10), stored)
}

func TestGetOrCreateGreetingFallsBackToHeader(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna.", HeaderDescription: "A friendly guide"}
	svc, _, _, messages := newConversationFixture(t, character)

	conversation, _, err := svc.GetOrCreate(context.Background(), newFakeSession(), character)
	require.NoError(t, err)

	transcript, err := messages.ListByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, "A friendly guide", transcript[0].Content)
}

func TestGetOrCreateNoGreetingNoMessage(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna."}
	svc, _, _, messages := newConversationFixture(t, character)

	conversation, _, err := svc.GetOrCreate(context.Background(), newFakeSession(), character)
	require.NoError(t, err)

	transcript, err := messages.ListByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestGetOrCreateIdempotentWithinSession(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna.", Greeting: "Hi!"}
	svc, _, _, messages := newConversationFixture(t, character)
	sess := newFakeSession()

	first, created, err := svc.GetOrCreate(context.Background(), sess, character)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.GetOrCreate(context.Background(), sess, character)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// No second greeting on re-entry.
	transcript, err := messages.ListByConversation(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 1)
}

func TestGetOrCreateDistinctAcrossSessions(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna."}
	svc, _, _, _ := newConversationFixture(t, character)

	first, _, err := svc.GetOrCreate(context.Background(), newFakeSession(), character)
	require.NoError(t, err)
	second, _, err := svc.GetOrCreate(context.Background(), newFakeSession(), character)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetOrCreateIgnoresForeignBinding(t *testing.T) {
	anna := &models.Character{Name: "Anna", Description: "You are Anna."}
	svc, characters, conversations, _ := newConversationFixture(t, anna)

	bob := &models.Character{Name: "Bob", Description: "You are Bob."}
	require.NoError(t, characters.Create(context.Background(), bob))

	// The session claims a binding to a conversation Bob owns.
	bobConversation, _, err := svc.GetOrCreate(context.Background(), newFakeSession(), bob)
	require.NoError(t, err)

	sess := newFakeSession()
	require.NoError(t, sess.Set(context.Background(), SessionKey(anna.ID), strconv.FormatUint(uint64(bobConversation.ID), 10)))

	conversation, created, err := svc.GetOrCreate(context.Background(), sess, anna)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, bobConversation.ID, conversation.ID)
	assert.Equal(t, anna.ID, conversation.CharacterID)

	_, err = conversations.GetByIDAndCharacter(context.Background(), conversation.ID, anna.ID)
	assert.NoError(t, err)
}

func TestGetOrCreateIgnoresGarbageBinding(t *testing.T) {
	character := &models.Character{Name: "Anna", Description: "You are Anna."}
	svc, _, _, _ := newConversationFixture(t, character)

	sess := newFakeSession()
	require.NoError(t, sess.Set(context.Background(), SessionKey(character.ID), "not-a-number"))

	conversation, created, err := svc.GetOrCreate(context.Background(), sess, character)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, conversation.ID)
}
