package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vnkhanh/study-notes-backend/models"
)

type Stats struct {
	Documents  int64 `json:"documents"`
	Notes      int64 `json:"notes"`
	Flashcards int64 `json:"flashcards"`
}

func (r *Repository) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Document{}).Where("user_id = ?", userID).Count(&s.Documents).Error; err != nil {
		return s, fmt.Errorf("count documents: %w", err)
	}
	if err := db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&s.Notes).Error; err != nil {
		return s, fmt.Errorf("count notes: %w", err)
	}
	if err := db.Model(&models.Flashcard{}).Where("user_id = ?", userID).Count(&s.Flashcards).Error; err != nil {
		return s, fmt.Errorf("count flashcards: %w", err)
	}
	return s, nil
}
