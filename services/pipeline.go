package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/repository"
)

// Store is the datastore surface the pipeline writes through.
type Store interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	CreateNote(ctx context.Context, note *models.Note) error
	CreateFlashcards(ctx context.Context, cards []models.Flashcard) error
}

// GenerationRequest is the inbound payload of one pipeline run.
type GenerationRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`

	// RequesterID, when set, must own the document.
	RequesterID uuid.UUID `json:"-"`
}

// GenerationResult separates the primary write (the note) from the
// best-effort secondary write (the flashcards). FlashcardErr is set when the
// batch insert failed; the note is persisted either way.
type GenerationResult struct {
	Note            models.Note
	Drafts          []FlashcardDraft
	Flashcards      []models.Flashcard
	FlashcardsSaved int
	FlashcardErr    error
}

// Pipeline turns raw study text into a persisted note and flashcards.
type Pipeline struct {
	completion CompletionClient
	store      Store
	notifier   StatusNotifier
	log        *zap.Logger
}

func NewPipeline(completion CompletionClient, store Store, notifier StatusNotifier, log *zap.Logger) *Pipeline {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Pipeline{
		completion: completion,
		store:      store,
		notifier:   notifier,
		log:        log.Named("pipeline"),
	}
}

// Run executes validate → notes ∥ keywords → flashcards → persist. Any
// returned error is a *StageError; a failed flashcard insert is reported in
// the result instead.
func (p *Pipeline) Run(ctx context.Context, req GenerationRequest) (res *GenerationResult, err error) {
	defer func() { pipelineRunsTotal.WithLabelValues(outcomeLabel(err)).Inc() }()

	doc, err := p.validate(ctx, req)
	if err != nil {
		p.log.Warn("generation request rejected", zap.String("document_id", req.DocumentID), zap.Error(err))
		return nil, err
	}

	log := p.log.With(zap.String("document_id", doc.ID.String()), zap.String("user_id", doc.UserID.String()))
	notify := func(stage string, progress float64, msg string) {
		p.notifier.SendStatusUpdate(doc.UserID, doc.ID, stage, progress, msg)
	}
	defer func() {
		if err != nil {
			log.Error("generation failed", zap.Error(err))
			notify(StageFailed, 1, PublicMessage(err))
		}
	}()

	log.Info("generating notes")
	notify(StageNotes, 0.1, "")
	notes, keywords, err := p.generateNotesAndKeywords(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	log.Info("generated notes, now generating flashcards", zap.Int("keywords", len(keywords)))
	notify(StageFlashcards, 0.5, "")
	drafts, err := p.generateFlashcards(ctx, notes)
	if err != nil {
		return nil, err
	}

	notify(StageSaving, 0.8, "")
	res, err = p.persist(ctx, log, doc, notes, keywords, drafts)
	if err != nil {
		return nil, err
	}

	log.Info("generated notes and flashcards",
		zap.String("note_id", res.Note.ID.String()),
		zap.Int("flashcards_parsed", len(drafts)),
		zap.Int("flashcards_saved", res.FlashcardsSaved),
	)
	notify(StageCompleted, 1, "")
	return res, nil
}

func (p *Pipeline) validate(ctx context.Context, req GenerationRequest) (*models.Document, error) {
	if strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, stageErr(StageValidate, ErrInvalidInput, invalidInputMessage, nil)
	}

	id, err := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if err != nil {
		return nil, stageErr(StageValidate, ErrNotFound, documentNotFoundMessage, err)
	}

	doc, err := p.store.GetDocument(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, stageErr(StageValidate, ErrNotFound, documentNotFoundMessage, err)
	}
	if err != nil {
		return nil, stageErr(StageValidate, ErrPersistenceFailed, "Failed to load document", err)
	}
	if doc.UserID == uuid.Nil {
		return nil, stageErr(StageValidate, ErrNotFound, "Document owner not found", nil)
	}
	if req.RequesterID != uuid.Nil && req.RequesterID != doc.UserID {
		return nil, stageErr(StageValidate, ErrNotFound, documentNotFoundMessage, nil)
	}
	return doc, nil
}

// generateNotesAndKeywords runs both completions concurrently; neither
// depends on the other and neither cancels the other. A notes failure takes
// precedence since only it is classified by status.
func (p *Pipeline) generateNotesAndKeywords(ctx context.Context, content string) (string, []string, error) {
	var (
		notes, keywordsText string
		notesErr, kwErr     error
		g                   errgroup.Group
	)
	g.Go(func() error {
		notes, notesErr = p.completion.Complete(ctx, notesSystemPrompt, notesUserPrompt(content))
		return notesErr
	})
	g.Go(func() error {
		keywordsText, kwErr = p.completion.Complete(ctx, keywordsSystemPrompt, content)
		return kwErr
	})
	_ = g.Wait()

	if notesErr != nil {
		return "", nil, notesStageError(notesErr)
	}
	if kwErr != nil {
		return "", nil, stageErr(StageKeywords, ErrGenerationFailed, "Failed to extract keywords", kwErr)
	}
	return notes, ParseKeywords(keywordsText), nil
}

func notesStageError(err error) error {
	switch {
	case errors.Is(err, ErrRateLimited):
		return stageErr(StageNotes, ErrRateLimited, rateLimitedMessage, err)
	case errors.Is(err, ErrPaymentRequired):
		return stageErr(StageNotes, ErrPaymentRequired, paymentRequiredMessage, err)
	default:
		return stageErr(StageNotes, ErrGenerationFailed, "Failed to generate notes", err)
	}
}

func (p *Pipeline) generateFlashcards(ctx context.Context, notes string) ([]FlashcardDraft, error) {
	text, err := p.completion.Complete(ctx, flashcardsSystemPrompt, flashcardsUserPrompt(notes))
	if err != nil {
		return nil, stageErr(StageFlashcards, ErrGenerationFailed, "Failed to generate flashcards", err)
	}
	return ParseFlashcards(text), nil
}

func (p *Pipeline) persist(ctx context.Context, log *zap.Logger, doc *models.Document, notes string, keywords []string, drafts []FlashcardDraft) (*GenerationResult, error) {
	note := models.Note{
		UserID:     doc.UserID,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Content:    notes,
		Keywords:   keywords,
	}
	if err := p.store.CreateNote(ctx, &note); err != nil {
		return nil, stageErr(StageSaving, ErrPersistenceFailed, "Failed to save notes", err)
	}

	res := &GenerationResult{Note: note, Drafts: drafts}
	if len(drafts) == 0 {
		return res, nil
	}

	cards := make([]models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		cards = append(cards, models.Flashcard{
			UserID:     doc.UserID,
			NoteID:     note.ID,
			Question:   d.Question,
			Answer:     d.Answer,
			Difficulty: d.Difficulty,
		})
	}

	if err := p.store.CreateFlashcards(ctx, cards); err != nil {
		res.FlashcardErr = stageErr(StageSavingFlashcards, ErrFlashcardPersistenceFailed, "Failed to save flashcards", err)
		log.Error("error inserting flashcards", zap.String("note_id", note.ID.String()), zap.Error(err))
		return res, nil
	}

	res.Flashcards = cards
	res.FlashcardsSaved = len(cards)
	flashcardsCreatedTotal.Add(float64(len(cards)))
	return res, nil
}

// GenerationResponse is the success body of a pipeline invocation.
type GenerationResponse struct {
	Success         bool   `json:"success"`
	NoteID          string `json:"noteId"`
	FlashcardsCount int    `json:"flashcardsCount"`
}

// ErrorResponse is the failure body of a pipeline invocation.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BuildResponse renders a pipeline outcome as status code and body.
func BuildResponse(res *GenerationResult, err error) (int, interface{}) {
	if err != nil {
		return HTTPStatus(err), ErrorResponse{Error: PublicMessage(err)}
	}
	return http.StatusOK, GenerationResponse{
		Success:         true,
		NoteID:          res.Note.ID.String(),
		FlashcardsCount: res.FlashcardsSaved,
	}
}
