package services

import (
	"errors"
	"net/http"
)

// Failure kinds of the generation pipeline. Match with errors.Is.
var (
	ErrInvalidInput               = errors.New("invalid input")
	ErrNotFound                   = errors.New("not found")
	ErrRateLimited                = errors.New("rate limited")
	ErrPaymentRequired            = errors.New("payment required")
	ErrGenerationFailed           = errors.New("generation failed")
	ErrPersistenceFailed          = errors.New("persistence failed")
	ErrFlashcardPersistenceFailed = errors.New("flashcard persistence failed")
)

// Pipeline stages, used in errors, logs, metrics and status updates.
const (
	StageValidate         = "validate"
	StageNotes            = "generating_notes"
	StageKeywords         = "extracting_keywords"
	StageFlashcards       = "generating_flashcards"
	StageSaving           = "saving"
	StageSavingFlashcards = "saving_flashcards"
	StageCompleted        = "completed"
	StageFailed           = "failed"
)

const (
	defaultFailureMessage   = "An error occurred"
	invalidInputMessage     = "Missing documentId or content"
	documentNotFoundMessage = "Document not found"
	rateLimitedMessage      = "Rate limit exceeded. Please try again later."
	paymentRequiredMessage  = "Payment required. Please add credits to your workspace."
)

// StageError is a classified pipeline failure. Kind is one of the sentinel
// errors above; Message is safe to return to clients.
type StageError struct {
	Stage   string
	Kind    error
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return e.Stage + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Stage + ": " + e.Message
}

func (e *StageError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func stageErr(stage string, kind error, msg string, cause error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Message: msg, Err: cause}
}

// kindOf returns the classified kind of err. A StageError's own Kind wins
// over whatever its cause wraps.
func kindOf(err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return err
}

// HTTPStatus maps a pipeline error to the response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch kind := kindOf(err); {
	case errors.Is(kind, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(kind, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(kind, ErrPaymentRequired):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message for the error envelope.
func PublicMessage(err error) string {
	var se *StageError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return defaultFailureMessage
}
