package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/study-notes-backend/models"
)

// CreateFlashcards inserts all cards in a single statement.
func (r *Repository) CreateFlashcards(ctx context.Context, cards []models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&cards).Error; err != nil {
		return fmt.Errorf("create flashcards: %w", err)
	}
	return nil
}

type FlashcardFilter struct {
	Search     string
	Difficulty models.Difficulty
}

// ListFlashcards returns the user's flashcards, newest first.
func (r *Repository) ListFlashcards(ctx context.Context, userID uuid.UUID, f FlashcardFilter) ([]models.Flashcard, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if search := strings.TrimSpace(f.Search); search != "" {
		p := likePattern(strings.ToLower(search))
		query = query.Where(`LOWER(question) LIKE ? ESCAPE '\' OR LOWER(answer) LIKE ? ESCAPE '\'`, p, p)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}

	var cards []models.Flashcard
	if err := query.Order("created_at DESC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	return cards, nil
}

// MarkReviewed bumps the review counter of a card owned by userID.
func (r *Repository) MarkReviewed(ctx context.Context, userID, cardID uuid.UUID, at time.Time) (*models.Flashcard, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Flashcard{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Updates(map[string]interface{}{
			"times_reviewed":   gorm.Expr("times_reviewed + 1"),
			"last_reviewed_at": at,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("mark reviewed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var card models.Flashcard
	if err := r.db.WithContext(ctx).First(&card, "id = ?", cardID).Error; err != nil {
		return nil, notFound(err)
	}
	return &card, nil
}
