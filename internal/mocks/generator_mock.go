package mocks

import (
	"context"

	"picturebook-server/internal/domain"
	"picturebook-server/internal/handler"
	"picturebook-server/internal/session"

	"github.com/stretchr/testify/mock"
)

var (
	_ handler.BookGenerator = (*MockBookGenerator)(nil)
	_ session.Generator     = (*MockBookGenerator)(nil)
)

// MockBookGenerator is a mock type for the BookGenerator and session Generator types
type MockBookGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, params
func (_m *MockBookGenerator) Generate(ctx context.Context, params domain.CreationParams) (domain.GeneratedBook, error) {
	ret := _m.Called(ctx, params)

	var r0 domain.GeneratedBook
	if rf, ok := ret.Get(0).(func(context.Context, domain.CreationParams) domain.GeneratedBook); ok {
		r0 = rf(ctx, params)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.GeneratedBook)
	}

	return r0, ret.Error(1)
}

// NewMockBookGenerator creates a new instance of MockBookGenerator.
func NewMockBookGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBookGenerator {
	m := &MockBookGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
