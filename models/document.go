package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document status values
const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	FileType  string    `gorm:"size:50;default:'text'" json:"file_type"`
	FilePath  string    `gorm:"type:text" json:"file_path,omitempty"` // public URL in object storage
	Status    string    `gorm:"size:30;default:'uploaded'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Notes []Note `gorm:"constraint:OnDelete:CASCADE;" json:"notes,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
