package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/study-notes-backend/services"
)

// GenerateNotes runs the generation pipeline over a document's content and
// answers {success, noteId, flashcardsCount} or {error}.
func (h *Handler) GenerateNotes(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// an unreadable body carries neither field
		req = services.GenerationRequest{}
	}
	req.RequesterID = uid

	res, err := h.generate(c.Request.Context(), req)
	c.JSON(services.BuildResponse(res, err))
}
