package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vnkhanh/study-notes-backend/services"
)

// MockCompletionClient is a mock type for the CompletionClient type
type MockCompletionClient struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, systemPrompt, userInput
func (_m *MockCompletionClient) Complete(ctx context.Context, systemPrompt string, userInput string) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userInput)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string) string); ok {
		r0 = rf(ctx, systemPrompt, userInput)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, systemPrompt, userInput)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockCompletionClient creates a new instance of MockCompletionClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCompletionClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompletionClient {
	m := &MockCompletionClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ services.CompletionClient = (*MockCompletionClient)(nil)
