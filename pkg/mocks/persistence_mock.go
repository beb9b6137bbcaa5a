package mocks

import (
	"context"

	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence. Transaction returns
// the configured error without calling fn.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Transaction(ctx context.Context, fn func(ctx context.Context, store persistence.Store) error) error {
	args := m.Called(ctx, fn)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
