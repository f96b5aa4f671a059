package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/search"
)

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Replace(ctx context.Context, rec search.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
