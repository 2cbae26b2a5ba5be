package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/repository"
)

// ListNotes returns the caller's notes, newest first. ?search= matches title,
// content or keywords, case-insensitively.
func (h *Handler) ListNotes(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	notes, err := h.repo.ListNotes(c.Request.Context(), uid, strings.TrimSpace(c.Query("search")))
	if err != nil {
		h.log.Error("list notes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// ListFlashcards returns the caller's flashcards, filtered by ?search= and
// ?difficulty=.
func (h *Handler) ListFlashcards(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	filter := repository.FlashcardFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Difficulty: models.Difficulty(strings.ToLower(c.Query("difficulty"))),
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
		return
	}

	cards, err := h.repo.ListFlashcards(c.Request.Context(), uid, filter)
	if err != nil {
		h.log.Error("list flashcards failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load flashcards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flashcards": cards})
}

// ReviewFlashcard records one review of the caller's flashcard.
func (h *Handler) ReviewFlashcard(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
		return
	}

	card, err := h.repo.MarkReviewed(c.Request.Context(), uid, cardID, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
		return
	}
	if err != nil {
		h.log.Error("review flashcard failed", zap.String("flashcard_id", cardID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review flashcard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flashcard": card})
}

// Stats returns counts of the caller's documents, notes and flashcards.
func (h *Handler) Stats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.repo.Stats(c.Request.Context(), uid)
	if err != nil {
		h.log.Error("load stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
