package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/services"
	"github.com/vnkhanh/study-notes-backend/utils"
)

type createDocumentRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Generate bool   `json:"generate"`
}

// uploadedDocument is a document body read from either JSON or multipart.
type uploadedDocument struct {
	createDocumentRequest
	fileType string
	file     *multipart.FileHeader
	data     []byte
}

// CreateDocument stores a study document from pasted text (JSON) or an
// uploaded .txt/.md/.pdf/.docx file (multipart). With generate set, the
// pipeline runs right away.
func (h *Handler) CreateDocument(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		in      *uploadedDocument
		status  int
		problem string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		in, status, problem = h.readMultipartDocument(c)
	} else {
		in, status, problem = readJSONDocument(c)
	}
	if problem != "" {
		c.JSON(status, gin.H{"error": problem})
		return
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing title or content"})
		return
	}

	doc := models.Document{
		ID:       uuid.New(),
		UserID:   uid,
		Title:    in.Title,
		Content:  in.Content,
		FileType: in.fileType,
		Status:   models.DocumentStatusUploaded,
	}
	if in.Generate {
		doc.Status = models.DocumentStatusProcessing
	}

	var objectPath string
	if in.file != nil && h.archive != nil {
		objectPath = utils.DocumentObjectPath(doc.ID, in.file.Filename)
		url, err := h.archive.Upload(objectPath, in.data, in.file.Header.Get("Content-Type"))
		if err != nil {
			h.log.Error("archive upload failed", zap.String("document_id", doc.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
			return
		}
		doc.FilePath = url
	}

	if err := h.repo.CreateDocument(c.Request.Context(), &doc); err != nil {
		h.log.Error("create document failed", zap.Error(err))
		if objectPath != "" {
			if rerr := h.archive.Remove(objectPath); rerr != nil {
				h.log.Warn("remove orphaned upload", zap.String("path", objectPath), zap.Error(rerr))
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}
	h.listChanged(uid)

	if !in.Generate {
		c.JSON(http.StatusCreated, gin.H{"document": doc})
		return
	}

	res, err := h.generate(c.Request.Context(), services.GenerationRequest{
		DocumentID:  doc.ID.String(),
		Content:     doc.Content,
		RequesterID: uid,
	})
	code, body := services.BuildResponse(res, err)
	if err != nil {
		c.JSON(code, body)
		return
	}
	doc.Status = models.DocumentStatusCompleted
	c.JSON(http.StatusCreated, gin.H{"document": doc, "generation": body})
}

func readJSONDocument(c *gin.Context) (doc *uploadedDocument, status int, problem string) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, http.StatusBadRequest, "Invalid request body"
	}
	return &uploadedDocument{createDocumentRequest: req, fileType: "text"}, 0, ""
}

func (h *Handler) readMultipartDocument(c *gin.Context) (doc *uploadedDocument, status int, problem string) {
	in := &uploadedDocument{fileType: "text"}
	in.Title = c.PostForm("title")
	in.Content = c.PostForm("content")
	in.Generate, _ = strconv.ParseBool(c.PostForm("generate"))

	file, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, 0, ""
	}
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid multipart body"
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, "File too large"
	}

	kind, err := services.InputTypeFromFilename(file.Filename)
	if err != nil {
		return nil, http.StatusBadRequest, "Unsupported file type"
	}
	data, err := services.ReadUpload(file)
	if err != nil {
		return nil, http.StatusBadRequest, "Could not read file"
	}
	text, err := services.ExtractText(kind, data)
	if err != nil {
		h.log.Warn("text extraction failed", zap.String("file", file.Filename), zap.Error(err))
		return nil, http.StatusUnprocessableEntity, "Could not extract text from file"
	}

	if strings.TrimSpace(in.Title) == "" {
		in.Title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}
	in.Content = text
	in.fileType = string(kind)
	in.file = file
	in.data = data
	return in, 0, ""
}

// ListDocuments returns the caller's documents, newest first.
func (h *Handler) ListDocuments(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	docs, err := h.repo.ListDocuments(c.Request.Context(), uid)
	if err != nil {
		h.log.Error("list documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
