// Package sheets adapts the Google Sheets API into the narrow surface
// the record store needs: one authenticated workbook handle, worksheet
// provisioning with header repair, and bounded retry around every
// remote call.
package sheets

import "context"

// Workbook is one spreadsheet document holding the logical tables.
type Workbook interface {
	// Worksheet fetches a worksheet by title. Returns ErrWorksheetNotFound
	// when no worksheet with that title exists.
	Worksheet(ctx context.Context, title string) (Worksheet, error)

	// AddWorksheet creates a worksheet with the given grid capacity.
	AddWorksheet(ctx context.Context, title string, rows, cols int64) (Worksheet, error)
}

// Worksheet is one tab of the workbook, addressed in A1 notation with
// 1-based row and column numbers.
type Worksheet interface {
	Title() string

	// Row reads a single row; a missing row yields an empty slice.
	Row(ctx context.Context, n int) ([]string, error)

	// Values reads the whole used range of the worksheet.
	Values(ctx context.Context) ([][]string, error)

	// Range reads a bounded A1 range, e.g. "A1:C200".
	Range(ctx context.Context, a1 string) ([][]string, error)

	// Update overwrites an A1 range with the given cells.
	Update(ctx context.Context, a1 string, values [][]string) error

	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error

	// Append adds one row after the table's last row.
	Append(ctx context.Context, row []string) error

	// DeleteRow removes the given row, shifting later rows up.
	DeleteRow(ctx context.Context, row int) error
}

// Source yields the process-wide workbook handle. The concrete Connector
// caches it; tests substitute fakes.
type Source interface {
	Workbook(ctx context.Context) (Workbook, error)
}
