package errors

import "fmt"

// Error constructors for the chat and admin surfaces. Codes are stable; the
// frontend switches on them.

func CharacterNotFound(id uint) *AppError {
	return NewNotFoundError("CHARACTER_NOT_FOUND", fmt.Sprintf("Character %d does not exist", id))
}

func ConversationNotFound(id uint) *AppError {
	return NewNotFoundError("CONVERSATION_NOT_FOUND", fmt.Sprintf("Conversation %d does not exist", id))
}

func InvalidID(field string) *AppError {
	return NewBadRequestError("INVALID_ID", fmt.Sprintf("%s must be an integer", field))
}

func EmptyMessage() *AppError {
	return NewBadRequestError("EMPTY_MESSAGE", "Message content must not be empty")
}

func MessageTooLong(max int) *AppError {
	return NewBadRequestError("MESSAGE_TOO_LONG", fmt.Sprintf("Message content must not exceed %d characters", max))
}

// NoSessionBinding rejects requests whose session never started a conversation
// with the character.
func NoSessionBinding() *AppError {
	return NewForbiddenError("NO_SESSION_BINDING", "No conversation is bound to this session for the character")
}

// ConversationMismatch rejects a conversation id that exists but is not the one
// bound to the requesting session.
func ConversationMismatch() *AppError {
	return NewForbiddenError("CONVERSATION_MISMATCH", "Conversation does not belong to this session")
}
