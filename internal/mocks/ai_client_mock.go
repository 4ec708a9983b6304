package mocks

import (
	"context"

	"picturebook-server/internal/generation"

	"github.com/stretchr/testify/mock"
)

var _ generation.AIClient = (*MockAIClient)(nil)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

// GenerateText provides a mock function with given fields: ctx, systemPrompt, userInput, params
func (_m *MockAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params generation.GenerationParams) (string, generation.UsageInfo, error) {
	ret := _m.Called(ctx, systemPrompt, userInput, params)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string, generation.GenerationParams) string); ok {
		r0 = rf(ctx, systemPrompt, userInput, params)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 generation.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(generation.UsageInfo)
	}

	return r0, r1, ret.Error(2)
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAIClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockIllustrator is a mock type for the Illustrator type
type MockIllustrator struct {
	mock.Mock
}

var _ generation.Illustrator = (*MockIllustrator)(nil)

// Illustrate provides a mock function with given fields: ctx, prompt
func (_m *MockIllustrator) Illustrate(ctx context.Context, prompt string) (string, error) {
	ret := _m.Called(ctx, prompt)
	return ret.String(0), ret.Error(1)
}

// NewMockIllustrator creates a new instance of MockIllustrator.
func NewMockIllustrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIllustrator {
	m := &MockIllustrator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
