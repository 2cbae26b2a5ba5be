package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vnkhanh/study-notes-backend/models"
)

func (r *Repository) CreateNote(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Omit("Flashcards").Create(note).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// ListNotes returns the user's notes, newest first. A non-empty search matches
// title, content or keywords case-insensitively.
func (r *Repository) ListNotes(ctx context.Context, userID uuid.UUID, search string) ([]models.Note, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if search = strings.TrimSpace(search); search != "" {
		p := likePattern(strings.ToLower(search))
		query = query.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(CAST(keywords AS TEXT)) LIKE ? ESCAPE '\'`,
			p, p, p,
		)
	}

	var notes []models.Note
	if err := query.Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}
