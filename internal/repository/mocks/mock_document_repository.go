package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/model"
	"policytrack/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *model.Document, first *model.Version) error {
	args := m.Called(ctx, doc, first)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) ListWithVersions(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) CreateVersion(ctx context.Context, v *model.Version) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockDocumentRepository) PublishVersion(ctx context.Context, p repository.PublishParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	args := m.Called(ctx, documentID, versionID)
	return args.Error(0)
}
