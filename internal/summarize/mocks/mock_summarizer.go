package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/model"
)

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, documentName string, changes []model.Change) (string, error) {
	args := m.Called(ctx, documentName, changes)
	return args.String(0), args.Error(1)
}
