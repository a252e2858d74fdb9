package repository_test

import (
	"context"
	"fmt"

	"github.com/okian/tally/internal/adapters/sheets"
)

// fakeSource hands out a single in-memory workbook.
type fakeSource struct {
	wb  *fakeWorkbook
	err error
}

func (f *fakeSource) Workbook(_ context.Context) (sheets.Workbook, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wb, nil
}

type fakeWorkbook struct {
	worksheets map[string]*fakeWorksheet
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

func (f *fakeWorkbook) AddWorksheet(_ context.Context, title string, _, _ int64) (sheets.Worksheet, error) {
	ws := &fakeWorksheet{title: title}
	f.worksheets[title] = ws
	return ws, nil
}

func (f *fakeWorkbook) sheet(title string, rows [][]string) *fakeWorksheet {
	ws := &fakeWorksheet{title: title, rows: rows}
	f.worksheets[title] = ws
	return ws
}

// fakeWorksheet is a plain grid with failure injection. beforeRow runs
// once before the next data-row read, letting tests simulate another
// client shifting rows between the scan and the verification read.
// Header reads (row 1) do not consume the hook.
type fakeWorksheet struct {
	title string
	rows  [][]string

	valuesErr error
	rangeRows [][]string
	beforeRow func(ws *fakeWorksheet)
}

func (f *fakeWorksheet) Title() string { return f.title }

func (f *fakeWorksheet) Row(_ context.Context, n int) ([]string, error) {
	if n > 1 && f.beforeRow != nil {
		hook := f.beforeRow
		f.beforeRow = nil
		hook(f)
	}
	if n < 1 || n > len(f.rows) {
		return nil, nil
	}
	return append([]string(nil), f.rows[n-1]...), nil
}

func (f *fakeWorksheet) Values(_ context.Context) ([][]string, error) {
	if f.valuesErr != nil {
		return nil, f.valuesErr
	}
	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeWorksheet) Range(_ context.Context, _ string) ([][]string, error) {
	if f.rangeRows != nil {
		return f.rangeRows, nil
	}
	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeWorksheet) Update(_ context.Context, _ string, values [][]string) error {
	if len(values) == 1 {
		for len(f.rows) < 1 {
			f.rows = append(f.rows, nil)
		}
		f.rows[0] = append([]string(nil), values[0]...)
	}
	return nil
}

func (f *fakeWorksheet) UpdateCell(_ context.Context, row, col int, value string) error {
	for len(f.rows) < row {
		f.rows = append(f.rows, nil)
	}
	for len(f.rows[row-1]) < col {
		f.rows[row-1] = append(f.rows[row-1], "")
	}
	f.rows[row-1][col-1] = value
	return nil
}

func (f *fakeWorksheet) Append(_ context.Context, row []string) error {
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

func (f *fakeWorksheet) DeleteRow(_ context.Context, row int) error {
	if row >= 1 && row <= len(f.rows) {
		f.rows = append(f.rows[:row-1], f.rows[row:]...)
	}
	return nil
}
