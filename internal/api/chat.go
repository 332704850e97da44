package api

import (
	"net/http"
	"strconv"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/service"
	"character-chat/backend/internal/session"
	"character-chat/backend/pkg/logger"
	"character-chat/backend/pkg/observability"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the anonymous chat surface: the character picker, the
// session-bound conversation resolution and the two turn endpoints.
type ChatHandler struct {
	characters    *service.CharacterService
	conversations *service.ConversationService
	guard         *service.AccessGuard
	chat          *service.ChatService
	logger        *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(
	characters *service.CharacterService,
	conversations *service.ConversationService,
	guard *service.AccessGuard,
	chat *service.ChatService,
	logger *logger.Logger,
) *ChatHandler {
	return &ChatHandler{
		characters:    characters,
		conversations: conversations,
		guard:         guard,
		chat:          chat,
		logger:        logger,
	}
}

// ListCharacters renders the character picker.
// GET /
func (h *ChatHandler) ListCharacters(c *gin.Context) {
	characters, err := h.characters.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	summaries := make([]models.CharacterSummary, len(characters))
	for i := range characters {
		summaries[i] = characters[i].Summary()
	}

	c.JSON(http.StatusOK, gin.H{"characters": summaries})
}

// Open resolves or creates the session-bound conversation for a character and
// returns its transcript.
// GET /chat/?character_id=N
func (h *ChatHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	characterID, err := strconv.ParseUint(c.Query("character_id"), 10, 64)
	if err != nil {
		c.Error(apperrors.InvalidID("character_id"))
		return
	}

	character, err := h.characters.Get(ctx, uint(characterID))
	if err != nil {
		c.Error(err)
		return
	}

	sess := session.FromContext(c)
	conversation, created, err := h.conversations.GetOrCreate(ctx, sess, character)
	if err != nil {
		c.Error(err)
		return
	}
	if created {
		observability.ConversationsCreated.Inc()
	}

	messages, err := h.conversations.Transcript(ctx, conversation.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversation.ID,
		"character":       character.Summary(),
		"messages":        messages,
	})
}

// LegacyTurn executes one chat turn from the form flow. It trusts a posted
// conversation id (filtered by character) and creates a fresh conversation,
// greeting included, when the id is absent or does not resolve. This is
// looser than the API flow's session check and kept only for the legacy
// client.
// POST /chat/ (form: conversation_id, character_id, content)
func (h *ChatHandler) LegacyTurn(c *gin.Context) {
	ctx := c.Request.Context()

	characterID, err := strconv.ParseUint(c.PostForm("character_id"), 10, 64)
	if err != nil {
		c.Error(apperrors.InvalidID("character_id"))
		return
	}

	character, err := h.characters.Get(ctx, uint(characterID))
	if err != nil {
		c.Error(err)
		return
	}

	content, err := service.ValidateContent(c.PostForm("content"))
	if err != nil {
		c.Error(err)
		return
	}

	var conversation *models.Conversation
	if raw := c.PostForm("conversation_id"); raw != "" {
		if id, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
			conversation, _ = h.conversations.Resolve(ctx, uint(id), character.ID)
		}
	}
	if conversation == nil {
		sess := session.FromContext(c)
		var created bool
		conversation, created, err = h.conversations.GetOrCreate(ctx, sess, character)
		if err != nil {
			c.Error(err)
			return
		}
		if created {
			observability.ConversationsCreated.Inc()
		}
	}

	if _, err := h.chat.ExecuteTurn(ctx, conversation, character, content); err != nil {
		c.Error(err)
		return
	}

	messages, err := h.conversations.Transcript(ctx, conversation.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversation.ID,
		"character":       character.Summary(),
		"messages":        messages,
	})
}

type apiTurnRequest struct {
	CharacterID    string `json:"character_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// UnmarshalJSON accepts ids as either JSON numbers or strings; both shapes
// exist in the wild among API clients.
func (r *apiTurnRequest) UnmarshalJSON(data []byte) error {
	type raw struct {
		CharacterID    any    `json:"character_id"`
		ConversationID any    `json:"conversation_id"`
		Message        string `json:"message"`
	}
	var v raw
	if err := jsonUnmarshal(data, &v); err != nil {
		return err
	}
	r.CharacterID = idString(v.CharacterID)
	r.ConversationID = idString(v.ConversationID)
	r.Message = v.Message
	return nil
}

// APITurn executes one chat turn for the JSON API, guarding conversation
// ownership against the session binding first.
// POST /api/chat/ (JSON: character_id, conversation_id, message)
func (h *ChatHandler) APITurn(c *gin.Context) {
	ctx := c.Request.Context()

	var req apiTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_BODY", "Request body must be valid JSON"))
		return
	}

	sess := session.FromContext(c)
	character, conversation, err := h.guard.Authorize(ctx, sess, req.CharacterID, req.ConversationID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.StatusCode == http.StatusForbidden {
			observability.GuardRejections.WithLabelValues(appErr.Code).Inc()
		}
		c.Error(err)
		return
	}

	content, err := service.ValidateContent(req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	reply, err := h.chat.ExecuteTurn(ctx, conversation, character, content)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply.Content})
}
