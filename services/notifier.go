package services

import "github.com/google/uuid"

// StatusNotifier receives progress of a document through the pipeline.
type StatusNotifier interface {
	SendStatusUpdate(userID, documentID uuid.UUID, status string, progress float64, errMsg string)
}

type noopNotifier struct{}

func (noopNotifier) SendStatusUpdate(uuid.UUID, uuid.UUID, string, float64, string) {}
