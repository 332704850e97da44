package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/service"
	"character-chat/backend/pkg/config"
	"character-chat/backend/pkg/logger"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AdminCharacterHandler serves the staff-only character CRUD endpoints.
type AdminCharacterHandler struct {
	characters *service.CharacterService
	config     *config.Config
	logger     *logger.Logger
}

// NewAdminCharacterHandler creates a new admin character handler.
func NewAdminCharacterHandler(characters *service.CharacterService, cfg *config.Config, logger *logger.Logger) *AdminCharacterHandler {
	return &AdminCharacterHandler{
		characters: characters,
		config:     cfg,
		logger:     logger,
	}
}

// List returns all characters with their full admin fields.
// GET /admin/characters/
func (h *AdminCharacterHandler) List(c *gin.Context) {
	characters, err := h.characters.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

// Get returns one character for the edit form.
// GET /admin/characters/:id/
func (h *AdminCharacterHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	character, err := h.characters.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Create adds a new character.
// POST /admin/characters/add/
func (h *AdminCharacterHandler) Create(c *gin.Context) {
	h.save(c, service.CreateMode())
}

// Edit updates an existing character.
// POST /admin/characters/:id/edit/
func (h *AdminCharacterHandler) Edit(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}
	h.save(c, service.EditMode(id))
}

// Delete removes a character; its conversations and messages cascade.
// DELETE /admin/characters/:id/
func (h *AdminCharacterHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.characters.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *AdminCharacterHandler) save(c *gin.Context, mode service.FormMode) {
	var req models.SaveCharacterRequest

	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(h.config.Uploads.MaxSize); err != nil {
			c.Error(apperrors.NewBadRequestError("INVALID_FORM", "Could not parse form data"))
			return
		}
		req.Name = c.PostForm("name")
		req.HeaderDescription = c.PostForm("header_description")
		req.ShortDescription = c.PostForm("short_description")
		req.Greeting = c.PostForm("greeting")
		req.Description = c.PostForm("description")
		req.AvatarURL = c.PostForm("avatar_url")

		avatar, err := h.saveAvatar(c)
		if err != nil {
			c.Error(err)
			return
		}
		req.Avatar = avatar
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
			return
		}
	}

	character, err := h.characters.Save(c.Request.Context(), mode, &req)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if _, edit := mode.Edit(); !edit {
		status = http.StatusCreated
	}
	c.JSON(status, character)
}

// saveAvatar stores an uploaded avatar image under the uploads directory and
// returns its public URL. Returns empty when no file was attached.
func (h *AdminCharacterHandler) saveAvatar(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		return "", nil // no file attached
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", apperrors.NewBadRequestError("INVALID_AVATAR", "Uploaded avatar is not an image")
	}

	if err := os.MkdirAll(h.config.Uploads.Dir, 0755); err != nil {
		h.logger.LogError(err, "Failed to create uploads directory")
		return "", apperrors.NewInternalServerError("UPLOAD_FAILED", "Failed to store avatar")
	}

	// Timestamped filename avoids collisions between uploads.
	filename := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	savePath := filepath.Join(h.config.Uploads.Dir, filename)

	if err := c.SaveUploadedFile(header, savePath); err != nil {
		h.logger.LogError(err, "Failed to save avatar file")
		return "", apperrors.NewInternalServerError("UPLOAD_FAILED", "Failed to store avatar")
	}

	return fmt.Sprintf("%s/%s", h.config.Uploads.PublicPath, filename), nil
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.InvalidID("id")
	}
	return uint(id), nil
}
