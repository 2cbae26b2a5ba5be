package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/middleware"
	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/repository"
	"github.com/vnkhanh/study-notes-backend/services"
	"github.com/vnkhanh/study-notes-backend/ws"
)

// Archiver keeps the original uploaded file.
type Archiver interface {
	Upload(objectPath string, data []byte, contentType string) (string, error)
	Remove(objectPath string) error
}

// Broadcaster pushes list refreshes to connected clients.
type Broadcaster interface {
	BroadcastDocumentListChanged(userID uuid.UUID)
	GetStats() ws.Stats
}

type Handler struct {
	repo           *repository.Repository
	pipeline       *services.Pipeline
	archive        Archiver
	events         Broadcaster
	maxUploadBytes int64
	log            *zap.Logger
}

type Options struct {
	Repo     *repository.Repository
	Pipeline *services.Pipeline
	// Archive is nil when object storage is not configured.
	Archive        Archiver
	Events         Broadcaster
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		repo:           opts.Repo,
		pipeline:       opts.Pipeline,
		archive:        opts.Archive,
		events:         opts.Events,
		maxUploadBytes: opts.MaxUploadBytes,
		log:            opts.Logger.Named("http"),
	}
}

// currentUser aborts with 401 when no authenticated caller is present.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return uid, ok
}

func (h *Handler) listChanged(userID uuid.UUID) {
	if h.events != nil {
		h.events.BroadcastDocumentListChanged(userID)
	}
}

// generate runs the pipeline for a document and tracks its status. Requests
// rejected during validation leave the status untouched: the document may
// not exist or belong to someone else.
func (h *Handler) generate(ctx context.Context, req services.GenerationRequest) (*services.GenerationResult, error) {
	res, err := h.pipeline.Run(ctx, req)
	var se *services.StageError
	if errors.As(err, &se) && se.Stage == services.StageValidate {
		return res, err
	}
	docID, perr := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if perr != nil {
		return res, err
	}

	status := models.DocumentStatusCompleted
	if err != nil {
		status = models.DocumentStatusFailed
	}
	if uerr := h.repo.UpdateDocumentStatus(context.WithoutCancel(ctx), docID, status); uerr != nil {
		h.log.Warn("update document status", zap.String("document_id", docID.String()), zap.Error(uerr))
	}
	if req.RequesterID != uuid.Nil {
		h.listChanged(req.RequesterID)
	}
	return res, err
}
