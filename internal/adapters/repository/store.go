// Package repository defines the record store interface and its
// spreadsheet-backed, in-memory, and failover implementations.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Store is the contract the store honors for any caller, independent of
// which backend services a request.
type Store interface {
	// Init provisions both logical tables. Idempotent.
	Init(ctx context.Context) error

	// LoadAllRecords returns a snapshot of every stored record. Rows
	// missing date, name or type are dropped, not surfaced as errors.
	LoadAllRecords(ctx context.Context) ([]model.Record, error)

	// UpsertRecord adds count to the record keyed by (date, name, type),
	// appending a new row when the key is absent.
	UpsertRecord(ctx context.Context, date, name string, typ model.RecordType, count int) error

	// DeleteRecord removes the first row matching the key, reporting
	// whether a deletion occurred.
	DeleteRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error)

	// GetTarget returns the stored target for (period, category), or
	// zero when absent.
	GetTarget(ctx context.Context, period string, category model.Category) (int, error)

	// SetTarget overwrites the target for (period, category). Replacing,
	// never additive.
	SetTarget(ctx context.Context, period string, category model.Category, value int) error
}
