package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"policytrack/internal/digest"
	"policytrack/internal/metrics"
	"policytrack/internal/model"
	"policytrack/internal/period"
	"policytrack/internal/repository"
)

// DigestService builds read-only period digests of document changes.
type DigestService interface {
	// Build resolves and validates the period, then aggregates all changes inside it.
	Build(ctx context.Context, typ model.PeriodType, year, num int) (*model.Digest, error)

	// Periods lists the selectable periods of a type, newest first.
	Periods(ctx context.Context, typ model.PeriodType) ([]model.DigestPeriod, error)
}

type digestService struct {
	repo    repository.DocumentRepository
	calc    period.Calculator
	clock   func() time.Time
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewDigestService constructs a DigestService. A nil clock uses time.Now.
func NewDigestService(repo repository.DocumentRepository, calc period.Calculator, clock func() time.Time, m *metrics.Metrics, log zerolog.Logger) DigestService {
	if clock == nil {
		clock = time.Now
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &digestService{repo: repo, calc: calc, clock: clock, metrics: m, log: log}
}

func (s *digestService) Build(ctx context.Context, typ model.PeriodType, year, num int) (*model.Digest, error) {
	p, err := period.Resolve(typ, year, num)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if v := s.calc.ValidateArchiveWindow(typ, year, num, s.clock()); !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, v.Reason)
	}

	docs, err := s.repo.ListWithVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	d := digest.Aggregate(p, docs)
	s.metrics.DigestsBuilt.WithLabelValues(string(typ)).Inc()

	s.log.Debug().
		Str("period", p.Label).
		Int("documents", len(d.Documents)).
		Int("changes", d.TotalChanges).
		Msg("digest built")
	return &d, nil
}

func (s *digestService) Periods(ctx context.Context, typ model.PeriodType) ([]model.DigestPeriod, error) {
	ps, err := s.calc.Available(typ, s.clock())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return ps, nil
}
