package service

import (
	"context"
	"errors"
	"time"

	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/models"
	"character-chat/backend/internal/store"
)

// In-memory store fakes. Each one keeps records in insertion order so tests
// can assert on ordering without a database.

type fakeCharacterStore struct {
	nextID     uint
	characters map[uint]*models.Character
}

func newFakeCharacterStore() *fakeCharacterStore {
	return &fakeCharacterStore{characters: make(map[uint]*models.Character)}
}

func (f *fakeCharacterStore) Create(ctx context.Context, character *models.Character) error {
	f.nextID++
	character.ID = f.nextID
	copied := *character
	f.characters[character.ID] = &copied
	return nil
}

func (f *fakeCharacterStore) Update(ctx context.Context, character *models.Character) error {
	if _, ok := f.characters[character.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *character
	f.characters[character.ID] = &copied
	return nil
}

func (f *fakeCharacterStore) Delete(ctx context.Context, id uint) error {
	if _, ok := f.characters[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.characters, id)
	return nil
}

func (f *fakeCharacterStore) GetByID(ctx context.Context, id uint) (*models.Character, error) {
	character, ok := f.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *character
	return &copied, nil
}

func (f *fakeCharacterStore) List(ctx context.Context) ([]models.Character, error) {
	result := make([]models.Character, 0, len(f.characters))
	for id := uint(1); id <= f.nextID; id++ {
		if character, ok := f.characters[id]; ok {
			result = append(result, *character)
		}
	}
	return result, nil
}

type fakeConversationStore struct {
	nextID        uint
	conversations map[uint]*models.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: make(map[uint]*models.Conversation)}
}

func (f *fakeConversationStore) Create(ctx context.Context, conversation *models.Conversation) error {
	f.nextID++
	conversation.ID = f.nextID
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	return nil
}

func (f *fakeConversationStore) GetByIDAndCharacter(ctx context.Context, id, characterID uint) (*models.Conversation, error) {
	conversation, ok := f.conversations[id]
	if !ok || conversation.CharacterID != characterID {
		return nil, store.ErrNotFound
	}
	copied := *conversation
	return &copied, nil
}

type fakeMessageStore struct {
	nextID   uint
	messages []models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) Create(ctx context.Context, message *models.Message) error {
	f.nextID++
	message.ID = f.nextID
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var result []models.Message
	for _, message := range f.messages {
		if message.ConversationID == conversationID {
			result = append(result, message)
		}
	}
	return result, nil
}

func (f *fakeMessageStore) ListRecent(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	all, _ := f.ListByConversation(ctx, conversationID)
	var result []models.Message
	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}
	return result, nil
}

type fakeUserStore struct {
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

// fakeSession is an in-memory session.Store for one browser session.
type fakeSession struct {
	values map[string]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: make(map[string]string)}
}

func (f *fakeSession) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeSession) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

// fakeCompletion records the last payload and returns a fixed reply or error.
type fakeCompletion struct {
	reply       string
	err         error
	lastPayload []llm.Message
}

func (f *fakeCompletion) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.lastPayload = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

var errCompletionDown = errors.New("completion provider unavailable")
