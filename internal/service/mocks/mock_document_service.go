package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/model"
	"policytrack/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, in service.CreateDocumentInput) (*service.PublishResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishResult), args.Error(1)
}

func (m *MockDocumentService) UploadVersion(ctx context.Context, documentID string, in service.UploadVersionInput) (*model.Version, error) {
	args := m.Called(ctx, documentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}

func (m *MockDocumentService) Approve(ctx context.Context, documentID, versionID string) (*service.PublishResult, error) {
	args := m.Called(ctx, documentID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishResult), args.Error(1)
}

func (m *MockDocumentService) Reject(ctx context.Context, documentID, versionID string) error {
	args := m.Called(ctx, documentID, versionID)
	return args.Error(0)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Compare(ctx context.Context, documentID, fromID, toID string) (*service.CompareResult, error) {
	args := m.Called(ctx, documentID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompareResult), args.Error(1)
}

func (m *MockDocumentService) Match(ctx context.Context, in service.MatchInput) ([]model.MatchResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MatchResult), args.Error(1)
}

func (m *MockDocumentService) Stage(ctx context.Context, in service.StageInput) (*service.StageResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StageResult), args.Error(1)
}

func (m *MockDocumentService) SweepStaged(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
