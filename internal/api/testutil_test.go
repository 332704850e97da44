package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/models"
	"character-chat/backend/internal/service"
	"character-chat/backend/internal/session"
	"character-chat/backend/internal/store"
	"character-chat/backend/pkg/logger"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Minimal in-memory stores for handler tests. They mirror the gorm-backed
// implementations closely enough to drive the full request flow.

type memCharacters struct {
	nextID     uint
	characters map[uint]*models.Character
}

func (m *memCharacters) Create(ctx context.Context, character *models.Character) error {
	m.nextID++
	character.ID = m.nextID
	copied := *character
	m.characters[character.ID] = &copied
	return nil
}

func (m *memCharacters) Update(ctx context.Context, character *models.Character) error {
	if _, ok := m.characters[character.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *character
	m.characters[character.ID] = &copied
	return nil
}

func (m *memCharacters) Delete(ctx context.Context, id uint) error {
	if _, ok := m.characters[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.characters, id)
	return nil
}

func (m *memCharacters) GetByID(ctx context.Context, id uint) (*models.Character, error) {
	character, ok := m.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *character
	return &copied, nil
}

func (m *memCharacters) List(ctx context.Context) ([]models.Character, error) {
	result := make([]models.Character, 0, len(m.characters))
	for id := uint(1); id <= m.nextID; id++ {
		if character, ok := m.characters[id]; ok {
			result = append(result, *character)
		}
	}
	return result, nil
}

type memConversations struct {
	nextID        uint
	conversations map[uint]*models.Conversation
}

func (m *memConversations) Create(ctx context.Context, conversation *models.Conversation) error {
	m.nextID++
	conversation.ID = m.nextID
	copied := *conversation
	m.conversations[conversation.ID] = &copied
	return nil
}

func (m *memConversations) GetByIDAndCharacter(ctx context.Context, id, characterID uint) (*models.Conversation, error) {
	conversation, ok := m.conversations[id]
	if !ok || conversation.CharacterID != characterID {
		return nil, store.ErrNotFound
	}
	copied := *conversation
	return &copied, nil
}

type memMessages struct {
	nextID   uint
	messages []models.Message
}

func (m *memMessages) Create(ctx context.Context, message *models.Message) error {
	m.nextID++
	message.ID = m.nextID
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	m.messages = append(m.messages, *message)
	return nil
}

func (m *memMessages) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var result []models.Message
	for _, message := range m.messages {
		if message.ConversationID == conversationID {
			result = append(result, message)
		}
	}
	return result, nil
}

func (m *memMessages) ListRecent(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	all, _ := m.ListByConversation(ctx, conversationID)
	var result []models.Message
	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}
	return result, nil
}

type stubCompletion struct {
	reply string
	err   error
}

func (s *stubCompletion) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

var errProviderDown = errors.New("provider down")

type chatFixture struct {
	router     *gin.Engine
	characters *memCharacters
	messages   *memMessages
	completion *stubCompletion
}

// newChatFixture wires the chat surface the way the production router does,
// over in-memory stores and a stubbed completion client.
func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	characters := &memCharacters{characters: make(map[uint]*models.Character)}
	conversations := &memConversations{conversations: make(map[uint]*models.Conversation)}
	messages := &memMessages{}
	completion := &stubCompletion{reply: "Nice to meet you!"}

	log := logger.New(logger.Config{Level: "error"})

	characterSvc := service.NewCharacterService(characters)
	conversationSvc := service.NewConversationService(conversations, messages)
	guard := service.NewAccessGuard(characters, conversations)
	chatSvc := service.NewChatService(messages, service.NewPromptBuilder(messages), completion, log)

	handler := NewChatHandler(characterSvc, conversationSvc, guard, chatSvc, log)

	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	sessionScoped := session.Middleware(session.NewMemoryBackend(), "chat_session", 3600, false)

	r.GET("/", sessionScoped, handler.ListCharacters)
	chat := r.Group("/chat", sessionScoped)
	chat.GET("/", handler.Open)
	chat.POST("/", handler.LegacyTurn)
	r.POST("/api/chat/", sessionScoped, handler.APITurn)

	return &chatFixture{
		router:     r,
		characters: characters,
		messages:   messages,
		completion: completion,
	}
}

func (f *chatFixture) seedCharacter(t *testing.T, character *models.Character) *models.Character {
	t.Helper()
	if err := f.characters.Create(context.Background(), character); err != nil {
		t.Fatal(err)
	}
	return character
}

func (f *chatFixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func findSessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "chat_session" {
			return cookie
		}
	}
	return nil
}
