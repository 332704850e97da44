package service

import (
	"context"

	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/models"
	"character-chat/backend/internal/store"
)

// MaxHistoryLength bounds how many conversation messages are sent with each
// completion call. Older history is silently dropped to cap token cost and
// latency; truncation is lossy, not an error.
const MaxHistoryLength = 12

// PromptBuilder turns persisted conversation state into the ordered message
// list for the completion API. It performs no external calls itself.
type PromptBuilder struct {
	messages store.MessageStore
}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder(messages store.MessageStore) *PromptBuilder {
	return &PromptBuilder{messages: messages}
}

// Build returns at most 1+MaxHistoryLength entries: the character description
// as the leading system entry, then the most recent messages in timestamp
// ascending order.
func (b *PromptBuilder) Build(ctx context.Context, conversation *models.Conversation, character *models.Character) ([]llm.Message, error) {
	recent, err := b.messages.ListRecent(ctx, conversation.ID, MaxHistoryLength)
	if err != nil {
		return nil, err
	}

	payload := make([]llm.Message, 0, len(recent)+1)
	payload = append(payload, llm.Message{
		Role:    llm.RoleSystem,
		Content: character.Description,
	})

	// The fetch is newest-first; walk it backwards to restore chronology.
	for i := len(recent) - 1; i >= 0; i-- {
		role := llm.RoleAssistant
		if recent[i].IsUser {
			role = llm.RoleUser
		}
		payload = append(payload, llm.Message{
			Role:    role,
			Content: recent[i].Content,
		})
	}

	return payload, nil
}
