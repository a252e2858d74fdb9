package repository

import (
	"context"
	"sync"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Failover is the error boundary of the store: every operation tries the
// primary (spreadsheet-backed) store and, on any unrecoverable failure,
// transparently redirects the same logical operation to the local
// fallback. Nothing below this layer may let an error escape to the
// caller; a write that lands in the fallback still reports success.
//
// Configuration-class failures pin the session to the fallback; other
// failures redirect only the failing operation.
type Failover struct {
	primary  Store
	fallback Store
	log      logger.Logger

	mu       sync.Mutex
	degraded bool
}

// FailoverOption applies a configuration option to the Failover store.
type FailoverOption func(*Failover)

// WithFailoverLogger sets a custom logger.
func WithFailoverLogger(l logger.Logger) FailoverOption {
	return func(f *Failover) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFailover composes the primary and fallback stores. A nil primary
// (no backend configured at all) pins the session to the fallback from
// the start.
func NewFailover(primary, fallback Store, opts ...FailoverOption) *Failover {
	f := &Failover{
		primary:  primary,
		fallback: fallback,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.primary == nil {
		f.degraded = true
		metrics.SetFallbackActive(true)
	}
	return f
}

// Degraded reports whether the session is pinned to the fallback store.
func (f *Failover) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

// engage records one redirected operation and, for configuration-class
// failures, pins the rest of the session to the fallback.
func (f *Failover) engage(ctx context.Context, op string, err error) {
	metrics.RecordFallbackEngaged(op)
	f.log.Warn(ctx, "backend failed; serving from local store",
		logger.String("op", op), logger.Error(err))
	if sheets.IsConfiguration(err) {
		f.mu.Lock()
		f.degraded = true
		f.mu.Unlock()
		metrics.SetFallbackActive(true)
	}
}

// Init prepares the fallback first (so it is ready to catch redirects)
// and then provisions the backend tables. Init never fails: a backend
// that cannot be provisioned means the session runs locally.
func (f *Failover) Init(ctx context.Context) error {
	if err := f.fallback.Init(ctx); err != nil {
		f.log.Warn(ctx, "fallback init failed", logger.Error(err))
	}
	if f.Degraded() {
		return nil
	}
	if err := f.primary.Init(ctx); err != nil {
		f.engage(ctx, "init", err)
	}
	return nil
}

// LoadAllRecords reads from the backend, or from the fallback when the
// backend is unreachable.
func (f *Failover) LoadAllRecords(ctx context.Context) ([]model.Record, error) {
	if f.Degraded() {
		return f.fallback.LoadAllRecords(ctx)
	}
	records, err := f.primary.LoadAllRecords(ctx)
	if err != nil {
		f.engage(ctx, "load", err)
		return f.fallback.LoadAllRecords(ctx)
	}
	return records, nil
}

// UpsertRecord writes through to the backend, or records locally when
// the backend is unreachable. The write is never lost and never raises.
func (f *Failover) UpsertRecord(ctx context.Context, date, name string, typ model.RecordType, count int) error {
	if f.Degraded() {
		return f.fallback.UpsertRecord(ctx, date, name, typ, count)
	}
	if err := f.primary.UpsertRecord(ctx, date, name, typ, count); err != nil {
		f.engage(ctx, "upsert", err)
		return f.fallback.UpsertRecord(ctx, date, name, typ, count)
	}
	return nil
}

// DeleteRecord deletes from the backend, or from the fallback when the
// backend is unreachable.
func (f *Failover) DeleteRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error) {
	if f.Degraded() {
		return f.fallback.DeleteRecord(ctx, date, name, typ)
	}
	deleted, err := f.primary.DeleteRecord(ctx, date, name, typ)
	if err != nil {
		f.engage(ctx, "delete", err)
		return f.fallback.DeleteRecord(ctx, date, name, typ)
	}
	return deleted, nil
}

// GetTarget reads from the backend, or from the fallback when the
// backend is unreachable.
func (f *Failover) GetTarget(ctx context.Context, period string, category model.Category) (int, error) {
	if f.Degraded() {
		return f.fallback.GetTarget(ctx, period, category)
	}
	value, err := f.primary.GetTarget(ctx, period, category)
	if err != nil {
		f.engage(ctx, "get_target", err)
		return f.fallback.GetTarget(ctx, period, category)
	}
	return value, nil
}

// SetTarget writes through to the backend, or records locally when the
// backend is unreachable.
func (f *Failover) SetTarget(ctx context.Context, period string, category model.Category, value int) error {
	if f.Degraded() {
		return f.fallback.SetTarget(ctx, period, category, value)
	}
	if err := f.primary.SetTarget(ctx, period, category, value); err != nil {
		f.engage(ctx, "set_target", err)
		return f.fallback.SetTarget(ctx, period, category, value)
	}
	return nil
}
