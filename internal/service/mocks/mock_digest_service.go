package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"policytrack/internal/model"
)

type MockDigestService struct {
	mock.Mock
}

func (m *MockDigestService) Build(ctx context.Context, typ model.PeriodType, year, num int) (*model.Digest, error) {
	args := m.Called(ctx, typ, year, num)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Digest), args.Error(1)
}

func (m *MockDigestService) Periods(ctx context.Context, typ model.PeriodType) ([]model.DigestPeriod, error) {
	args := m.Called(ctx, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DigestPeriod), args.Error(1)
}
