package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// MemStore is the in-process substitute for the spreadsheet-backed
// store, keyed identically and honoring the same additive-record /
// replacing-target semantics so callers cannot tell which store served
// a request. State lives for the session, or in a local JSON file when
// a path is configured.
type MemStore struct {
	mu      sync.Mutex
	records []model.Record
	targets map[model.TargetKey]int

	path string
	log  logger.Logger
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithFile persists the store to a JSON file at path, loaded at Init and
// rewritten on every mutation.
func WithFile(path string) MemOption {
	return func(m *MemStore) {
		m.path = path
	}
}

// WithMemLogger sets a custom logger.
func WithMemLogger(l logger.Logger) MemOption {
	return func(m *MemStore) {
		if l != nil {
			m.log = l
		}
	}
}

// NewMemStore creates an empty MemStore.
func NewMemStore(opts ...MemOption) *MemStore {
	m := &MemStore{
		targets: make(map[model.TargetKey]int),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// persistedState is the on-disk shape of the fallback file.
type persistedState struct {
	Records []model.Record `json:"records"`
	Targets []model.Target `json:"targets"`
}

// Init loads the fallback file when one is configured. A missing file is
// a fresh start; an unreadable one is logged, abandoned, and replaced on
// the next mutation.
func (m *MemStore) Init(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		m.log.Warn(ctx, "fallback file unreadable; starting fresh", logger.String("path", m.path), logger.Error(err))
		return nil
	}
	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		m.log.Warn(ctx, "fallback file corrupt; starting fresh",
			logger.String("path", m.path), logger.Error(fmt.Errorf("%w: %w", ErrFallbackCorrupt, err)))
		return nil
	}
	m.records = state.Records
	m.targets = make(map[model.TargetKey]int, len(state.Targets))
	for _, t := range state.Targets {
		m.targets[t.Key()] = t.Target
	}
	return nil
}

// LoadAllRecords returns a copy of the stored records.
func (m *MemStore) LoadAllRecords(ctx context.Context) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Record, len(m.records))
	copy(out, m.records)
	metrics.RecordStoreOp("load", "memory")
	return out, nil
}

// UpsertRecord adds count to an existing key or appends a new record
// with the week derived from the date.
func (m *MemStore) UpsertRecord(ctx context.Context, date, name string, typ model.RecordType, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.RecordKey{Date: date, Name: name, Type: typ}
	for i := range m.records {
		if m.records[i].Key() == key {
			m.records[i].Count += count
			m.persist(ctx)
			metrics.RecordStoreOp("upsert", "memory")
			return nil
		}
	}
	m.records = append(m.records, model.Record{
		Date:  date,
		Week:  model.ISOWeek(date),
		Name:  name,
		Type:  typ,
		Count: count,
	})
	m.persist(ctx)
	metrics.RecordStoreOp("upsert", "memory")
	return nil
}

// DeleteRecord removes the first record matching the key.
func (m *MemStore) DeleteRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.RecordKey{Date: date, Name: name, Type: typ}
	for i := range m.records {
		if m.records[i].Key() == key {
			m.records = append(m.records[:i], m.records[i+1:]...)
			m.persist(ctx)
			metrics.RecordStoreOp("delete", "memory")
			return true, nil
		}
	}
	return false, nil
}

// GetTarget returns the stored target or zero.
func (m *MemStore) GetTarget(ctx context.Context, period string, category model.Category) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.RecordStoreOp("get_target", "memory")
	return m.targets[model.TargetKey{Period: period, Category: category}], nil
}

// SetTarget replaces the target for the key.
func (m *MemStore) SetTarget(ctx context.Context, period string, category model.Category, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets[model.TargetKey{Period: period, Category: category}] = value
	m.persist(ctx)
	metrics.RecordStoreOp("set_target", "memory")
	return nil
}

// persist rewrites the fallback file. Callers hold the mutex. Failures
// are logged, never raised: the fallback is the last line of defense and
// must not take the caller down with it.
func (m *MemStore) persist(ctx context.Context) {
	if m.path == "" {
		return
	}
	state := persistedState{Records: m.records, Targets: make([]model.Target, 0, len(m.targets))}
	for key, val := range m.targets {
		state.Targets = append(state.Targets, model.Target{Period: key.Period, Category: key.Category, Target: val})
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		m.log.Error(ctx, "encode fallback state", logger.Error(err))
		return
	}

	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := filepath.Join(filepath.Dir(m.path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		m.log.Error(ctx, "write fallback state", logger.String("path", tmp), logger.Error(err))
		return
	}
	if err := os.Rename(tmp, m.path); err != nil {
		m.log.Error(ctx, "replace fallback file", logger.String("path", m.path), logger.Error(err))
		_ = os.Remove(tmp)
	}
}
