package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is the generated study summary of one document.
type Note struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Keywords   []string  `gorm:"type:jsonb;serializer:json" json:"keywords"` // extraction order, not deduplicated
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Flashcards []Flashcard `gorm:"constraint:OnDelete:CASCADE;" json:"flashcards,omitempty"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
