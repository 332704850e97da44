package api

import (
	"net/http"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/service"
	"character-chat/backend/pkg/logger"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"

	jwtpkg "character-chat/backend/pkg/jwt"
)

// AuthHandler serves staff authentication endpoints.
type AuthHandler struct {
	users  *service.UserService
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *service.UserService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Login authenticates a staff user and returns a signed token.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"is_staff": user.IsStaff,
		},
	})
}

// Me returns the authenticated user's profile.
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	value, exists := c.Get("claims")
	if !exists {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}
	claims, ok := value.(*jwtpkg.Claims)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_staff": user.IsStaff,
	})
}
