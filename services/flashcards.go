package services

import (
	"strings"
	"unicode/utf8"

	"github.com/vnkhanh/study-notes-backend/models"
)

// Answer length bounds, in characters, for difficulty tiers.
const (
	easyAnswerMaxLen   = 50  // shorter than this is easy
	mediumAnswerMaxLen = 150 // longer than this is hard
)

// FlashcardDraft is a parsed card not yet bound to an owner or note.
type FlashcardDraft struct {
	Question   string
	Answer     string
	Difficulty models.Difficulty
}

// ParseFlashcards reads "Q: <question> | A: <answer>" lines. Lines missing
// either marker, and cards with an empty question or answer, are dropped.
func ParseFlashcards(text string) []FlashcardDraft {
	drafts := []FlashcardDraft{}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "Q:") || !strings.Contains(line, "A:") {
			continue
		}

		parts := strings.Split(line, "|")
		question := strings.TrimSpace(strings.Replace(parts[0], "Q:", "", 1))
		answer := ""
		if len(parts) > 1 {
			answer = strings.TrimSpace(strings.Replace(parts[1], "A:", "", 1))
		}
		if question == "" || answer == "" {
			continue
		}

		drafts = append(drafts, FlashcardDraft{
			Question:   question,
			Answer:     answer,
			Difficulty: ClassifyDifficulty(answer),
		})
	}
	return drafts
}

// ClassifyDifficulty tiers a card by answer length: under 50 characters is
// easy, over 150 is hard, anything in between is medium.
func ClassifyDifficulty(answer string) models.Difficulty {
	n := utf8.RuneCountInString(answer)
	switch {
	case n < easyAnswerMaxLen:
		return models.DifficultyEasy
	case n > mediumAnswerMaxLen:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}
