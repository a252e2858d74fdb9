package sheets_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/tally/internal/adapters/sheets"
)

// fakeWorkbook is an in-memory Workbook for provisioner tests.
type fakeWorkbook struct {
	worksheets map[string]*fakeWorksheet

	addCalls int
	lastRows int64
	lastCols int64
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{worksheets: make(map[string]*fakeWorksheet)}
}

func (f *fakeWorkbook) Worksheet(_ context.Context, title string) (sheets.Worksheet, error) {
	if ws, ok := f.worksheets[title]; ok {
		return ws, nil
	}
	return nil, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
}

func (f *fakeWorkbook) AddWorksheet(_ context.Context, title string, rows, cols int64) (sheets.Worksheet, error) {
	f.addCalls++
	f.lastRows = rows
	f.lastCols = cols
	ws := &fakeWorksheet{title: title}
	f.worksheets[title] = ws
	return ws, nil
}

// fakeWorksheet stores rows as a plain grid and counts every write so
// tests can assert on idempotency.
type fakeWorksheet struct {
	title  string
	rows   [][]string
	writes int

	rowErr error // injected failure for Row reads
}

func (f *fakeWorksheet) Title() string { return f.title }

func (f *fakeWorksheet) Row(_ context.Context, n int) ([]string, error) {
	if f.rowErr != nil {
		return nil, f.rowErr
	}
	if n < 1 || n > len(f.rows) {
		return nil, nil
	}
	out := make([]string, len(f.rows[n-1]))
	copy(out, f.rows[n-1])
	return out, nil
}

func (f *fakeWorksheet) Values(_ context.Context) ([][]string, error) {
	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeWorksheet) Range(ctx context.Context, _ string) ([][]string, error) {
	return f.Values(ctx)
}

func (f *fakeWorksheet) Update(_ context.Context, a1 string, values [][]string) error {
	f.writes++
	// Only row-1 header updates are exercised by the provisioner.
	if strings.HasPrefix(a1, "A1:") && len(values) == 1 {
		f.ensureRow(1)
		f.rows[0] = append([]string(nil), values[0]...)
	}
	return nil
}

func (f *fakeWorksheet) UpdateCell(_ context.Context, row, col int, value string) error {
	f.writes++
	f.ensureRow(row)
	for len(f.rows[row-1]) < col {
		f.rows[row-1] = append(f.rows[row-1], "")
	}
	f.rows[row-1][col-1] = value
	return nil
}

func (f *fakeWorksheet) Append(_ context.Context, row []string) error {
	f.writes++
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

func (f *fakeWorksheet) DeleteRow(_ context.Context, row int) error {
	f.writes++
	if row >= 1 && row <= len(f.rows) {
		f.rows = append(f.rows[:row-1], f.rows[row:]...)
	}
	return nil
}

func (f *fakeWorksheet) ensureRow(n int) {
	for len(f.rows) < n {
		f.rows = append(f.rows, nil)
	}
}
