package service

import (
	"context"
	"strings"
	"time"

	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/models"
	"character-chat/backend/internal/store"
	"character-chat/backend/pkg/config"
	"character-chat/backend/pkg/logger"
	"character-chat/backend/pkg/observability"

	apperrors "character-chat/backend/pkg/errors"
)

// ChatService executes one chat turn: persist the user message, call the
// completion API once, persist the reply. A failed completion call is
// absorbed into a fixed fallback reply; the transcript never shows a raw
// error and the conversation stays usable.
type ChatService struct {
	messages    store.MessageStore
	prompts     *PromptBuilder
	completions llm.Client
	fallback    string
	log         *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(messages store.MessageStore, prompts *PromptBuilder, completions llm.Client, log *logger.Logger) *ChatService {
	return &ChatService{
		messages:    messages,
		prompts:     prompts,
		completions: completions,
		fallback:    config.FallbackReply,
		log:         log,
	}
}

// ValidateContent trims and checks inbound user text. Returns the trimmed
// content or a bad-request error. Nothing is persisted on rejection.
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.EmptyMessage()
	}
	if len([]rune(content)) > models.MaxMessageLength {
		return "", apperrors.MessageTooLong(models.MaxMessageLength)
	}
	return content, nil
}

// ExecuteTurn runs one turn against an already validated conversation.
// Content must have passed ValidateContent. Returns the assistant message.
func (s *ChatService) ExecuteTurn(ctx context.Context, conversation *models.Conversation, character *models.Character, content string) (*models.Message, error) {
	userMessage := &models.Message{
		ConversationID: conversation.ID,
		IsUser:         true,
		Content:        content,
		Timestamp:      time.Now(),
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	// The payload is built after the user turn is persisted so it includes
	// that message as the most recent history entry.
	payload, err := s.prompts.Build(ctx, conversation, character)
	if err != nil {
		return nil, err
	}

	reply, err := s.completions.Complete(ctx, payload)
	outcome := "ok"
	if err != nil {
		s.log.LogError(err, "completion call failed, using fallback reply",
			"conversation_id", conversation.ID,
			"character_id", character.ID,
		)
		reply = s.fallback
		outcome = "fallback"
	}
	observability.ChatTurns.WithLabelValues(outcome).Inc()

	assistantMessage := &models.Message{
		ConversationID: conversation.ID,
		IsUser:         false,
		Content:        reply,
		Timestamp:      time.Now(),
	}
	if err := s.messages.Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	return assistantMessage, nil
}
