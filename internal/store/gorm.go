package store

import (
	"context"
	"errors"

	"character-chat/backend/internal/models"

	"gorm.io/gorm"
)

// GormStores bundles the gorm-backed implementations over one connection.
type GormStores struct {
	Characters    CharacterStore
	Conversations ConversationStore
	Messages      MessageStore
	Users         UserStore
}

// NewGormStores creates the gorm-backed store set.
func NewGormStores(db *gorm.DB) *GormStores {
	return &GormStores{
		Characters:    &gormCharacterStore{db: db},
		Conversations: &gormConversationStore{db: db},
		Messages:      &gormMessageStore{db: db},
		Users:         &gormUserStore{db: db},
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type gormCharacterStore struct {
	db *gorm.DB
}

func (s *gormCharacterStore) Create(ctx context.Context, character *models.Character) error {
	return s.db.WithContext(ctx).Create(character).Error
}

func (s *gormCharacterStore) Update(ctx context.Context, character *models.Character) error {
	return s.db.WithContext(ctx).Save(character).Error
}

func (s *gormCharacterStore) Delete(ctx context.Context, id uint) error {
	// Conversations and messages go with the character via the FK constraints.
	result := s.db.WithContext(ctx).Delete(&models.Character{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormCharacterStore) GetByID(ctx context.Context, id uint) (*models.Character, error) {
	var character models.Character
	if err := s.db.WithContext(ctx).First(&character, id).Error; err != nil {
		return nil, translate(err)
	}
	return &character, nil
}

func (s *gormCharacterStore) List(ctx context.Context) ([]models.Character, error) {
	var characters []models.Character
	if err := s.db.WithContext(ctx).Order("id").Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

type gormConversationStore struct {
	db *gorm.DB
}

func (s *gormConversationStore) Create(ctx context.Context, conversation *models.Conversation) error {
	return s.db.WithContext(ctx).Create(conversation).Error
}

func (s *gormConversationStore) GetByIDAndCharacter(ctx context.Context, id, characterID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND character_id = ?", id, characterID).
		First(&conversation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conversation, nil
}

type gormMessageStore struct {
	db *gorm.DB
}

func (s *gormMessageStore) Create(ctx context.Context, message *models.Message) error {
	return s.db.WithContext(ctx).Create(message).Error
}

func (s *gormMessageStore) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *gormMessageStore) ListRecent(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

type gormUserStore struct {
	db *gorm.DB
}

func (s *gormUserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *gormUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormUserStore) Update(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}
