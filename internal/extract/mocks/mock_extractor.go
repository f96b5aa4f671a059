package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, ref, contentType string) (string, error) {
	args := m.Called(ctx, ref, contentType)
	return args.String(0), args.Error(1)
}
