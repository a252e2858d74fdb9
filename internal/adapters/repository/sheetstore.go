package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/schema"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// targetScanRange is the bounded read the target lookup falls back to
// when the whole-table read fails. Generous for the table's scale.
const targetScanRange = "A1:C200"

// SheetStore maps the records and targets tables onto the workbook.
// Key lookups are full linear scans, acceptable at this system's scale
// (low thousands of rows); mutations re-verify the located row right
// before writing to narrow the window against concurrent row shifts
// from other clients.
type SheetStore struct {
	source sheets.Source
	prov   *sheets.Provisioner
	log    logger.Logger
}

// SheetOption applies a configuration option to the SheetStore.
type SheetOption func(*SheetStore)

// WithSheetLogger sets a custom logger.
func WithSheetLogger(l logger.Logger) SheetOption {
	return func(s *SheetStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProvisioner sets the worksheet provisioner.
func WithProvisioner(p *sheets.Provisioner) SheetOption {
	return func(s *SheetStore) {
		if p != nil {
			s.prov = p
		}
	}
}

// NewSheetStore creates a store over the given workbook source.
func NewSheetStore(source sheets.Source, opts ...SheetOption) *SheetStore {
	s := &SheetStore{
		source: source,
		prov:   sheets.NewProvisioner(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// worksheet resolves a ready worksheet for one logical table.
func (s *SheetStore) worksheet(ctx context.Context, table string, header []string) (sheets.Worksheet, error) {
	wb, err := s.source.Workbook(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	ws, err := s.prov.Ensure(ctx, wb, table, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return ws, nil
}

// Init provisions both logical tables.
func (s *SheetStore) Init(ctx context.Context) error {
	if _, err := s.worksheet(ctx, schema.RecordsSheet, schema.RecordsHeader); err != nil {
		return err
	}
	if _, err := s.worksheet(ctx, schema.TargetsSheet, schema.TargetsHeader); err != nil {
		return err
	}
	return nil
}

// LoadAllRecords reads the whole records table into typed rows. Count
// cells that do not parse coerce to zero; a missing or unparsable week
// is recomputed from the date; rows without date, name or type are
// dropped.
func (s *SheetStore) LoadAllRecords(ctx context.Context) ([]model.Record, error) {
	ws, err := s.worksheet(ctx, schema.RecordsSheet, schema.RecordsHeader)
	if err != nil {
		return nil, err
	}
	values, err := ws.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if len(values) <= 1 {
		return []model.Record{}, nil
	}

	idx := schema.Index(values[0], schema.RecordsHeader)
	out := make([]model.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec, ok := recordFromRow(row, idx)
		if !ok {
			s.log.Debug(ctx, "dropping incomplete row", logger.Any("row", row))
			continue
		}
		out = append(out, rec)
	}
	metrics.SetRecordsLoaded(len(out))
	metrics.RecordStoreOp("load", "sheets")
	return out, nil
}

// UpsertRecord adds count to the row keyed by (date, name, type), or
// appends a new row laid out by the live header. The located row is
// re-verified immediately before the write; on mismatch the table is
// re-scanned once before degrading to an append.
func (s *SheetStore) UpsertRecord(ctx context.Context, date, name string, typ model.RecordType, count int) error {
	ws, err := s.worksheet(ctx, schema.RecordsSheet, schema.RecordsHeader)
	if err != nil {
		return err
	}
	values, err := ws.Values(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	week := model.ISOWeek(date)
	idx := indexFor(values, schema.RecordsHeader)
	key := model.RecordKey{Date: date, Name: name, Type: typ}

	rowNum := findRecordRow(values, idx, key)
	if rowNum > 0 {
		old := storedCount(values, idx, rowNum)

		// Another client may have inserted or deleted rows since the
		// scan; confirm the remembered index still holds the key.
		current, rerr := ws.Row(ctx, rowNum)
		if rerr != nil || !rowMatchesRecord(current, idx, key) {
			values, err = ws.Values(ctx)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
			}
			idx = indexFor(values, schema.RecordsHeader)
			rowNum = findRecordRow(values, idx, key)
			if rowNum > 0 {
				old = storedCount(values, idx, rowNum)
			}
		}

		if rowNum > 0 {
			if err := ws.UpdateCell(ctx, rowNum, idx["count"]+1, strconv.Itoa(old+count)); err != nil {
				return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
			}
			if wi := idx["week"]; wi >= 0 {
				if err := ws.UpdateCell(ctx, rowNum, wi+1, strconv.Itoa(week)); err != nil {
					return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
				}
			}
			metrics.RecordStoreOp("upsert", "sheets")
			return nil
		}
	}

	row := make([]string, len(schema.RecordsHeader))
	place := func(col string, val string) {
		if i := idx[col]; i >= 0 && i < len(row) {
			row[i] = val
		}
	}
	place("date", date)
	place("week", strconv.Itoa(week))
	place("name", name)
	place("type", string(typ))
	place("count", strconv.Itoa(count))
	if err := ws.Append(ctx, row); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	metrics.RecordStoreOp("upsert", "sheets")
	return nil
}

// DeleteRecord removes the first row matching the key, re-verifying the
// row immediately before deletion. Returns false when no row ever
// matched.
func (s *SheetStore) DeleteRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error) {
	ws, err := s.worksheet(ctx, schema.RecordsSheet, schema.RecordsHeader)
	if err != nil {
		return false, err
	}
	values, err := ws.Values(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	idx := indexFor(values, schema.RecordsHeader)
	key := model.RecordKey{Date: date, Name: name, Type: typ}

	rowNum := findRecordRow(values, idx, key)
	if rowNum <= 0 {
		return false, nil
	}

	current, rerr := ws.Row(ctx, rowNum)
	if rerr != nil || !rowMatchesRecord(current, idx, key) {
		values, err = ws.Values(ctx)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		idx = indexFor(values, schema.RecordsHeader)
		rowNum = findRecordRow(values, idx, key)
		if rowNum <= 0 {
			return false, nil
		}
	}

	if err := ws.DeleteRow(ctx, rowNum); err != nil {
		return false, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	metrics.RecordStoreOp("delete", "sheets")
	return true, nil
}

// GetTarget returns the stored target for (period, category), or zero
// when absent. The whole-table read is preferred; on failure a narrow
// bounded range is tried before the error propagates.
func (s *SheetStore) GetTarget(ctx context.Context, period string, category model.Category) (int, error) {
	ws, err := s.worksheet(ctx, schema.TargetsSheet, schema.TargetsHeader)
	if err != nil {
		return 0, err
	}
	values, err := ws.Values(ctx)
	if err != nil {
		values, err = ws.Range(ctx, targetScanRange)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
	}
	if len(values) <= 1 {
		return 0, nil
	}

	idx := schema.Index(values[0], schema.TargetsHeader)
	rowNum := findTargetRow(values, idx, period, category)
	if rowNum <= 0 {
		return 0, nil
	}
	metrics.RecordStoreOp("get_target", "sheets")
	return storedTarget(values, idx, rowNum), nil
}

// SetTarget overwrites the target cell for (period, category), appending
// a new row when the key is absent. Pure replace, never additive.
func (s *SheetStore) SetTarget(ctx context.Context, period string, category model.Category, value int) error {
	ws, err := s.worksheet(ctx, schema.TargetsSheet, schema.TargetsHeader)
	if err != nil {
		return err
	}
	values, err := ws.Values(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	idx := indexFor(values, schema.TargetsHeader)
	rowNum := findTargetRow(values, idx, period, category)
	if rowNum > 0 {
		if err := ws.UpdateCell(ctx, rowNum, idx["target"]+1, strconv.Itoa(value)); err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		metrics.RecordStoreOp("set_target", "sheets")
		return nil
	}

	row := make([]string, len(schema.TargetsHeader))
	if i := idx["month"]; i >= 0 && i < len(row) {
		row[i] = period
	}
	if i := idx["category"]; i >= 0 && i < len(row) {
		row[i] = string(category)
	}
	if i := idx["target"]; i >= 0 && i < len(row) {
		row[i] = strconv.Itoa(value)
	}
	if err := ws.Append(ctx, row); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	metrics.RecordStoreOp("set_target", "sheets")
	return nil
}

// indexFor resolves column positions from the live header row, falling
// back to canonical positions when the table is empty.
func indexFor(values [][]string, canonical []string) map[string]int {
	if len(values) > 0 {
		return schema.Index(values[0], canonical)
	}
	return schema.Index(canonical, canonical)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// recordFromRow validates one raw row into a typed Record. Rows missing
// any key field are rejected.
func recordFromRow(row []string, idx map[string]int) (model.Record, bool) {
	date := cell(row, idx["date"])
	name := cell(row, idx["name"])
	typ := cell(row, idx["type"])
	if date == "" || name == "" || typ == "" {
		return model.Record{}, false
	}

	week := 0
	if w := cell(row, idx["week"]); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			week = n
		}
	}
	if week <= 0 {
		week = model.ISOWeek(date)
	}

	return model.Record{
		Date:  date,
		Week:  week,
		Name:  name,
		Type:  model.RecordType(typ),
		Count: model.ParseCount(cell(row, idx["count"])),
	}, true
}

// findRecordRow scans for the key, returning the 1-based sheet row or -1.
func findRecordRow(values [][]string, idx map[string]int, key model.RecordKey) int {
	for i := 1; i < len(values); i++ {
		if rowMatchesRecord(values[i], idx, key) {
			return i + 1
		}
	}
	return -1
}

func rowMatchesRecord(row []string, idx map[string]int, key model.RecordKey) bool {
	return cell(row, idx["date"]) == key.Date &&
		cell(row, idx["name"]) == key.Name &&
		cell(row, idx["type"]) == string(key.Type)
}

func storedCount(values [][]string, idx map[string]int, rowNum int) int {
	return model.ParseCount(cell(values[rowNum-1], idx["count"]))
}

func findTargetRow(values [][]string, idx map[string]int, period string, category model.Category) int {
	for i := 1; i < len(values); i++ {
		row := values[i]
		if cell(row, idx["month"]) == period && cell(row, idx["category"]) == string(category) {
			return i + 1
		}
	}
	return -1
}

func storedTarget(values [][]string, idx map[string]int, rowNum int) int {
	return model.ParseCount(cell(values[rowNum-1], idx["target"]))
}
