package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/session"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSession(ctx context.Context, s session.Session, ttl time.Duration) error {
	args := m.Called(ctx, s, ttl)
	return args.Error(0)
}

func (m *MockStore) LookupSession(ctx context.Context, id string) (session.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) SaveStaged(ctx context.Context, u session.StagedUpload, ttl time.Duration) error {
	args := m.Called(ctx, u, ttl)
	return args.Error(0)
}

func (m *MockStore) LookupStaged(ctx context.Context, id string) (session.StagedUpload, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(session.StagedUpload), args.Error(1)
}

func (m *MockStore) TakeStaged(ctx context.Context, id string) (session.StagedUpload, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(session.StagedUpload), args.Error(1)
}
