// Package service provides the core business service that implements
// the dependencies required by the HTTP API: validated store operations
// and period summaries over the record store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/summary"
	"github.com/okian/tally/pkg/logger"
)

// Service validates caller input, delegates to the store, and builds
// the aggregated reports. The store behind it decides backend vs
// fallback; by the time an operation returns here, it has succeeded
// against one of the two.
type Service struct {
	store repository.Store
	log   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store the service operates on.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Service. A store must be provided via WithStore.
func New(opts ...Option) (*Service, error) {
	s := &Service{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, errors.New("service requires a store")
	}
	return s, nil
}

// Init provisions both logical tables. Idempotent.
func (s *Service) Init(ctx context.Context) error {
	return s.store.Init(ctx)
}

// Records returns a snapshot of all stored records.
func (s *Service) Records(ctx context.Context) ([]model.Record, error) {
	return s.store.LoadAllRecords(ctx)
}

// SubmitCount upserts one activity count. Validation failures surface to
// the caller; storage failures are absorbed by the store's fallback.
func (s *Service) SubmitCount(ctx context.Context, date, name string, typ model.RecordType, count int) error {
	rec := model.Record{Date: date, Name: name, Type: typ, Count: count}
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.store.UpsertRecord(ctx, date, name, typ, count)
}

// RemoveRecord deletes the record keyed by (date, name, type),
// reporting whether a row was removed.
func (s *Service) RemoveRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error) {
	rec := model.Record{Date: date, Name: name, Type: typ}
	if err := rec.Validate(); err != nil {
		return false, err
	}
	return s.store.DeleteRecord(ctx, date, name, typ)
}

// Target returns the stored target for (period, category), zero when
// absent.
func (s *Service) Target(ctx context.Context, period string, category model.Category) (int, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: unknown category %q", model.ErrInvalidTarget, category)
	}
	return s.store.GetTarget(ctx, period, category)
}

// SetTarget replaces the target for (period, category).
func (s *Service) SetTarget(ctx context.Context, period string, category model.Category, value int) error {
	t := model.Target{Period: period, Category: category, Target: value}
	if err := t.Validate(); err != nil {
		return err
	}
	return s.store.SetTarget(ctx, period, category, value)
}

// MonthlySummary aggregates a YYYY-MM month against its stored targets.
func (s *Service) MonthlySummary(ctx context.Context, month string) (summary.Report, error) {
	records, err := s.store.LoadAllRecords(ctx)
	if err != nil {
		return summary.Report{}, err
	}
	rep := summary.ForMonth(records, month)
	return s.withTargets(ctx, rep)
}

// WeeklySummary aggregates an ISO (year, week) against its stored
// targets.
func (s *Service) WeeklySummary(ctx context.Context, year, week int) (summary.Report, error) {
	records, err := s.store.LoadAllRecords(ctx)
	if err != nil {
		return summary.Report{}, err
	}
	rep := summary.ForWeek(records, year, week)
	return s.withTargets(ctx, rep)
}

func (s *Service) withTargets(ctx context.Context, rep summary.Report) (summary.Report, error) {
	app, err := s.store.GetTarget(ctx, rep.Period, model.CategoryApp)
	if err != nil {
		return summary.Report{}, err
	}
	svy, err := s.store.GetTarget(ctx, rep.Period, model.CategorySurvey)
	if err != nil {
		return summary.Report{}, err
	}
	return rep.WithTargets(app, svy), nil
}
