package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/mocks"
	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/repository"
	"github.com/vnkhanh/study-notes-backend/services"
)

const (
	testContent    = "Cells are the basic unit of life. Mitochondria produce ATP."
	testNotes      = "# Cells\n- basic unit of life\n- mitochondria produce ATP"
	testKeywords   = "Cells, Mitochondria , ATP,, "
	testFlashcards = "Here you go:\nQ: What is the basic unit of life? | A: The cell.\nQ: What do mitochondria produce? | A: ATP\nnot a card"
)

var (
	notesPrompt      = mock.MatchedBy(func(s string) bool { return strings.Contains(s, "study notes") })
	keywordsPrompt   = mock.MatchedBy(func(s string) bool { return strings.Contains(s, "comma-separated list of keywords") })
	flashcardsPrompt = mock.MatchedBy(func(s string) bool { return strings.Contains(s, "Q: [question]") })
)

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []string
	errMsgs  []string
}

func (n *recordingNotifier) SendStatusUpdate(_, _ uuid.UUID, status string, _ float64, errMsg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
	if errMsg != "" {
		n.errMsgs = append(n.errMsgs, errMsg)
	}
}

type fixture struct {
	ai       *mocks.MockCompletionClient
	store    *mocks.MockStore
	notifier *recordingNotifier
	pipeline *services.Pipeline
	doc      *models.Document
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		ai:       mocks.NewMockCompletionClient(t),
		store:    mocks.NewMockStore(t),
		notifier: &recordingNotifier{},
		doc:      &models.Document{ID: uuid.New(), UserID: uuid.New(), Title: "Biology 101"},
	}
	f.pipeline = services.NewPipeline(f.ai, f.store, f.notifier, zap.NewNop())
	return f
}

func (f *fixture) request() services.GenerationRequest {
	return services.GenerationRequest{DocumentID: f.doc.ID.String(), Content: testContent}
}

func (f *fixture) expectDocument() {
	f.store.On("GetDocument", mock.Anything, f.doc.ID).Return(f.doc, nil).Once()
}

func (f *fixture) expectNotesAndKeywords() {
	f.ai.On("Complete", mock.Anything, notesPrompt, mock.MatchedBy(func(s string) bool {
		return strings.HasSuffix(s, testContent)
	})).Return(testNotes, nil).Once()
	f.ai.On("Complete", mock.Anything, keywordsPrompt, testContent).Return(testKeywords, nil).Once()
}

func (f *fixture) expectCreateNote(noteID uuid.UUID, err error) {
	f.store.On("CreateNote", mock.Anything, mock.AnythingOfType("*models.Note")).
		Run(func(args mock.Arguments) {
			if err == nil {
				args.Get(1).(*models.Note).ID = noteID
			}
		}).
		Return(err).Once()
}

func TestPipeline_Run_Success(t *testing.T) {
	f := newFixture(t)
	noteID := uuid.New()

	f.expectDocument()
	f.expectNotesAndKeywords()
	// flashcards come from the generated notes, not the raw content
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.MatchedBy(func(s string) bool {
		return strings.HasSuffix(s, testNotes) && !strings.Contains(s, testContent)
	})).Return(testFlashcards, nil).Once()

	var savedNote models.Note
	f.store.On("CreateNote", mock.Anything, mock.AnythingOfType("*models.Note")).
		Run(func(args mock.Arguments) {
			n := args.Get(1).(*models.Note)
			n.ID = noteID
			savedNote = *n
		}).Return(nil).Once()

	var savedCards []models.Flashcard
	f.store.On("CreateFlashcards", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedCards = args.Get(1).([]models.Flashcard) }).
		Return(nil).Once()

	res, err := f.pipeline.Run(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, f.doc.UserID, savedNote.UserID)
	assert.Equal(t, f.doc.ID, savedNote.DocumentID)
	assert.Equal(t, "Biology 101", savedNote.Title)
	assert.Equal(t, testNotes, savedNote.Content)
	assert.Equal(t, []string{"Cells", "Mitochondria", "ATP"}, savedNote.Keywords)

	require.Len(t, savedCards, 2)
	for _, c := range savedCards {
		assert.Equal(t, f.doc.UserID, c.UserID)
		assert.Equal(t, noteID, c.NoteID)
		assert.Equal(t, models.DifficultyEasy, c.Difficulty)
	}
	assert.Equal(t, "What is the basic unit of life?", savedCards[0].Question)
	assert.Equal(t, "The cell.", savedCards[0].Answer)

	assert.Equal(t, noteID, res.Note.ID)
	assert.Equal(t, 2, res.FlashcardsSaved)
	assert.NoError(t, res.FlashcardErr)

	status, body := services.BuildResponse(res, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.GenerationResponse{Success: true, NoteID: noteID.String(), FlashcardsCount: 2}, body)

	assert.Equal(t, []string{
		services.StageNotes, services.StageFlashcards, services.StageSaving, services.StageCompleted,
	}, f.notifier.statuses)
}

func TestPipeline_Run_InvalidInput_NoExternalCalls(t *testing.T) {
	tests := []struct {
		name string
		req  services.GenerationRequest
	}{
		{"missing document id", services.GenerationRequest{Content: testContent}},
		{"missing content", services.GenerationRequest{DocumentID: uuid.NewString()}},
		{"empty both", services.GenerationRequest{}},
		{"whitespace content", services.GenerationRequest{DocumentID: uuid.NewString(), Content: "  \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.pipeline.Run(context.Background(), tt.req)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
			status, body := services.BuildResponse(res, err)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, services.ErrorResponse{Error: "Missing documentId or content"}, body)
			f.ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
			f.store.AssertNotCalled(t, "GetDocument", mock.Anything, mock.Anything)
		})
	}
}

func TestPipeline_Run_DocumentNotFound(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetDocument", mock.Anything, f.doc.ID).Return(nil, repository.ErrNotFound).Once()

	_, err := f.pipeline.Run(context.Background(), f.request())

	assert.ErrorIs(t, err, services.ErrNotFound)
	status, body := services.BuildResponse(nil, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.ErrorResponse{Error: "Document not found"}, body)
	f.ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_MalformedDocumentID(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.Run(context.Background(), services.GenerationRequest{DocumentID: "not-a-uuid", Content: testContent})

	assert.ErrorIs(t, err, services.ErrNotFound)
	f.store.AssertNotCalled(t, "GetDocument", mock.Anything, mock.Anything)
}

func TestPipeline_Run_DocumentLookupError(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetDocument", mock.Anything, f.doc.ID).Return(nil, errors.New("connection refused")).Once()

	_, err := f.pipeline.Run(context.Background(), f.request())

	assert.ErrorIs(t, err, services.ErrPersistenceFailed)
	assert.Equal(t, http.StatusInternalServerError, services.HTTPStatus(err))
}

func TestPipeline_Run_RequesterMustOwnDocument(t *testing.T) {
	f := newFixture(t)
	f.expectDocument()

	req := f.request()
	req.RequesterID = uuid.New()
	_, err := f.pipeline.Run(context.Background(), req)

	assert.ErrorIs(t, err, services.ErrNotFound)
	f.ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_OwnerlessDocument(t *testing.T) {
	f := newFixture(t)
	f.doc.UserID = uuid.Nil
	f.expectDocument()

	_, err := f.pipeline.Run(context.Background(), f.request())

	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestPipeline_Run_NotesStageClassification(t *testing.T) {
	tests := []struct {
		name       string
		aiErr      error
		wantKind   error
		wantStatus int
		wantMsg    string
	}{
		{"rate limited", fmt.Errorf("%w: status 429", services.ErrRateLimited), services.ErrRateLimited, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"payment required", fmt.Errorf("%w: status 402", services.ErrPaymentRequired), services.ErrPaymentRequired, http.StatusPaymentRequired, "Payment required. Please add credits to your workspace."},
		{"other failure", fmt.Errorf("%w: status 503", services.ErrGenerationFailed), services.ErrGenerationFailed, http.StatusInternalServerError, "Failed to generate notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectDocument()
			f.ai.On("Complete", mock.Anything, notesPrompt, mock.Anything).Return("", tt.aiErr).Once()
			f.ai.On("Complete", mock.Anything, keywordsPrompt, mock.Anything).Return(testKeywords, nil).Maybe()

			res, err := f.pipeline.Run(context.Background(), f.request())

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantKind)
			status, body := services.BuildResponse(res, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, services.ErrorResponse{Error: tt.wantMsg}, body)
			f.ai.AssertNotCalled(t, "Complete", mock.Anything, flashcardsPrompt, mock.Anything)
			f.store.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
			f.store.AssertNotCalled(t, "CreateFlashcards", mock.Anything, mock.Anything)
			assert.Contains(t, f.notifier.statuses, services.StageFailed)
		})
	}
}

func TestPipeline_Run_KeywordFailureIsNotClassifiedByStatus(t *testing.T) {
	f := newFixture(t)
	f.expectDocument()
	f.ai.On("Complete", mock.Anything, notesPrompt, mock.Anything).Return(testNotes, nil).Once()
	f.ai.On("Complete", mock.Anything, keywordsPrompt, mock.Anything).
		Return("", fmt.Errorf("%w: status 429", services.ErrRateLimited)).Once()

	_, err := f.pipeline.Run(context.Background(), f.request())

	assert.ErrorIs(t, err, services.ErrGenerationFailed)
	assert.Equal(t, http.StatusInternalServerError, services.HTTPStatus(err))
	assert.Equal(t, "Failed to extract keywords", services.PublicMessage(err))
	f.store.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
}

func TestPipeline_Run_SlowNotesRateLimitWinsOverFastKeywordFailure(t *testing.T) {
	f := newFixture(t)
	f.expectDocument()

	var notesCtxErr error
	f.ai.On("Complete", mock.Anything, notesPrompt, mock.Anything).
		After(50 * time.Millisecond).
		Run(func(args mock.Arguments) { notesCtxErr = args.Get(0).(context.Context).Err() }).
		Return("", fmt.Errorf("%w: status 429", services.ErrRateLimited)).Once()
	f.ai.On("Complete", mock.Anything, keywordsPrompt, mock.Anything).
		After(5 * time.Millisecond).
		Return("", fmt.Errorf("%w: status 429", services.ErrRateLimited)).Once()

	res, err := f.pipeline.Run(context.Background(), f.request())

	assert.NoError(t, notesCtxErr, "notes call must not be cancelled by the keywords failure")
	status, body := services.BuildResponse(res, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, services.ErrorResponse{Error: "Rate limit exceeded. Please try again later."}, body)
	var se *services.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, services.StageNotes, se.Stage)
	f.store.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
}

func TestPipeline_Run_FlashcardGenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.expectDocument()
	f.expectNotesAndKeywords()
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.Anything).
		Return("", fmt.Errorf("%w: status 429", services.ErrRateLimited)).Once()

	_, err := f.pipeline.Run(context.Background(), f.request())

	assert.Equal(t, http.StatusInternalServerError, services.HTTPStatus(err))
	assert.Equal(t, "Failed to generate flashcards", services.PublicMessage(err))
	f.store.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
}

func TestPipeline_Run_NoteInsertFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.expectDocument()
	f.expectNotesAndKeywords()
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.Anything).Return(testFlashcards, nil).Once()
	f.expectCreateNote(uuid.Nil, errors.New("unique violation"))

	res, err := f.pipeline.Run(context.Background(), f.request())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, services.ErrPersistenceFailed)
	assert.Equal(t, http.StatusInternalServerError, services.HTTPStatus(err))
	f.store.AssertNotCalled(t, "CreateFlashcards", mock.Anything, mock.Anything)
}

func TestPipeline_Run_FlashcardInsertFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	noteID := uuid.New()
	f.expectDocument()
	f.expectNotesAndKeywords()
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.Anything).Return(testFlashcards, nil).Once()
	f.expectCreateNote(noteID, nil)
	f.store.On("CreateFlashcards", mock.Anything, mock.Anything).Return(errors.New("batch insert failed")).Once()

	res, err := f.pipeline.Run(context.Background(), f.request())

	require.NoError(t, err)
	assert.Equal(t, noteID, res.Note.ID)
	assert.Equal(t, 0, res.FlashcardsSaved)
	assert.Len(t, res.Drafts, 2)
	assert.ErrorIs(t, res.FlashcardErr, services.ErrFlashcardPersistenceFailed)

	status, body := services.BuildResponse(res, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.GenerationResponse{Success: true, NoteID: noteID.String(), FlashcardsCount: 0}, body)
	assert.Equal(t, services.StageCompleted, f.notifier.statuses[len(f.notifier.statuses)-1])
}

func TestPipeline_Run_NoParseableFlashcards(t *testing.T) {
	f := newFixture(t)
	noteID := uuid.New()
	f.expectDocument()
	f.expectNotesAndKeywords()
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.Anything).Return("Sorry, I cannot help with that.", nil).Once()
	f.expectCreateNote(noteID, nil)

	res, err := f.pipeline.Run(context.Background(), f.request())

	require.NoError(t, err)
	assert.Equal(t, 0, res.FlashcardsSaved)
	assert.NoError(t, res.FlashcardErr)
	f.store.AssertNotCalled(t, "CreateFlashcards", mock.Anything, mock.Anything)
}

func TestPipeline_Run_NotIdempotent(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetDocument", mock.Anything, f.doc.ID).Return(f.doc, nil).Twice()
	f.ai.On("Complete", mock.Anything, notesPrompt, mock.Anything).Return(testNotes, nil).Twice()
	f.ai.On("Complete", mock.Anything, keywordsPrompt, mock.Anything).Return(testKeywords, nil).Twice()
	f.ai.On("Complete", mock.Anything, flashcardsPrompt, mock.Anything).Return(testFlashcards, nil).Twice()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	call := 0
	f.store.On("CreateNote", mock.Anything, mock.AnythingOfType("*models.Note")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Note).ID = ids[call]
			call++
		}).Return(nil).Twice()
	f.store.On("CreateFlashcards", mock.Anything, mock.Anything).Return(nil).Twice()

	first, err := f.pipeline.Run(context.Background(), f.request())
	require.NoError(t, err)
	second, err := f.pipeline.Run(context.Background(), f.request())
	require.NoError(t, err)

	assert.NotEqual(t, first.Note.ID, second.Note.ID)
}
