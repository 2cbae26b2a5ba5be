package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vnkhanh/study-notes-backend/models"
	"github.com/vnkhanh/study-notes-backend/services"
)

// MockStore is a mock type for the Store type
type MockStore struct {
	mock.Mock
}

// GetDocument provides a mock function with given fields: ctx, id
func (_m *MockStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Document
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Document); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Document)
	}

	return r0, ret.Error(1)
}

// CreateNote provides a mock function with given fields: ctx, note
func (_m *MockStore) CreateNote(ctx context.Context, note *models.Note) error {
	ret := _m.Called(ctx, note)
	return ret.Error(0)
}

// CreateFlashcards provides a mock function with given fields: ctx, cards
func (_m *MockStore) CreateFlashcards(ctx context.Context, cards []models.Flashcard) error {
	ret := _m.Called(ctx, cards)
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ services.Store = (*MockStore)(nil)
