package service

import (
	"context"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/store"

	apperrors "character-chat/backend/pkg/errors"
)

// FormMode distinguishes the create and edit variants of the admin character
// form. Use CreateMode or EditMode to construct one.
type FormMode struct {
	edit bool
	id   uint
}

// CreateMode is the form mode for a new character.
func CreateMode() FormMode {
	return FormMode{}
}

// EditMode is the form mode for an existing character.
func EditMode(id uint) FormMode {
	return FormMode{edit: true, id: id}
}

// Edit reports whether the mode targets an existing character and its id.
func (m FormMode) Edit() (uint, bool) {
	return m.id, m.edit
}

// CharacterService manages character records for the picker and the admin
// form. Characters are never deleted by the chat flow.
type CharacterService struct {
	characters store.CharacterStore
}

// NewCharacterService creates a new character service.
func NewCharacterService(characters store.CharacterStore) *CharacterService {
	return &CharacterService{characters: characters}
}

// Save applies the admin form in either mode. In edit mode the existing
// record is loaded first so unset optional fields are overwritten, matching
// form semantics rather than patch semantics.
func (s *CharacterService) Save(ctx context.Context, mode FormMode, req *models.SaveCharacterRequest) (*models.Character, error) {
	if req.Name == "" {
		return nil, apperrors.NewBadRequestError("VALIDATION_ERROR", "Character name is required")
	}
	if req.Description == "" {
		return nil, apperrors.NewBadRequestError("VALIDATION_ERROR", "Character description is required")
	}

	character := &models.Character{}
	if id, ok := mode.Edit(); ok {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		character = existing
	} else {
		character.CreatedAt = time.Now()
	}

	character.Name = req.Name
	character.HeaderDescription = req.HeaderDescription
	character.ShortDescription = req.ShortDescription
	character.Greeting = req.Greeting
	character.Description = req.Description
	character.AvatarURL = req.AvatarURL
	if req.Avatar != "" {
		character.Avatar = req.Avatar
	}
	character.UpdatedAt = time.Now()

	if _, ok := mode.Edit(); ok {
		if err := s.characters.Update(ctx, character); err != nil {
			return nil, err
		}
	} else {
		if err := s.characters.Create(ctx, character); err != nil {
			return nil, err
		}
	}

	return character, nil
}

// Get returns a character by id.
func (s *CharacterService) Get(ctx context.Context, id uint) (*models.Character, error) {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.CharacterNotFound(id)
		}
		return nil, err
	}
	return character, nil
}

// List returns all characters ordered by id.
func (s *CharacterService) List(ctx context.Context) ([]models.Character, error) {
	return s.characters.List(ctx)
}

// Delete removes a character. Its conversations and their messages are
// deleted by the cascade.
func (s *CharacterService) Delete(ctx context.Context, id uint) error {
	if err := s.characters.Delete(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return apperrors.CharacterNotFound(id)
		}
		return err
	}
	return nil
}
