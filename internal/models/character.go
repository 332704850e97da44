package models

import (
	"time"
)

// Character is a persona definition. Description is sent verbatim as the
// system prompt for every completion call.
type Character struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	Name              string    `json:"name" gorm:"not null"`
	HeaderDescription string    `json:"header_description"`
	ShortDescription  string    `json:"short_description"`
	Greeting          string    `json:"greeting"`
	Description       string    `json:"description" gorm:"not null"`
	Avatar            string    `json:"avatar"`
	AvatarURL         string    `json:"avatar_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Conversations []Conversation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// DisplayAvatar prefers the uploaded avatar over the external URL.
func (c *Character) DisplayAvatar() string {
	if c.Avatar != "" {
		return c.Avatar
	}
	return c.AvatarURL
}

// GreetingText is the content of the synthetic first assistant message.
// Empty means no greeting message is created.
func (c *Character) GreetingText() string {
	if c.Greeting != "" {
		return c.Greeting
	}
	return c.HeaderDescription
}

type SaveCharacterRequest struct {
	Name              string `json:"name" binding:"required"`
	HeaderDescription string `json:"header_description"`
	ShortDescription  string `json:"short_description"`
	Greeting          string `json:"greeting"`
	Description       string `json:"description" binding:"required"`
	Avatar            string `json:"avatar"`
	AvatarURL         string `json:"avatar_url"`
}

// CharacterSummary is the picker representation of a character.
type CharacterSummary struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	DisplayAvatar     string `json:"display_avatar"`
	HeaderDescription string `json:"header_description"`
	ShortDescription  string `json:"short_description"`
}

func (c *Character) Summary() CharacterSummary {
	return CharacterSummary{
		ID:                c.ID,
		Name:              c.Name,
		DisplayAvatar:     c.DisplayAvatar(),
		HeaderDescription: c.HeaderDescription,
		ShortDescription:  c.ShortDescription,
	}
}
