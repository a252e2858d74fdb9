package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/okian/tally/pkg/logger"
)

// OAuth scopes the service account needs to read and write the workbook.
var credentialScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9\-_]+)`)
var bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// Connector produces the one shared, authenticated workbook handle for
// the lifetime of the process. The handle is built lazily on first use
// and cached; it is never mutated afterwards.
type Connector struct {
	creds   []byte
	locator string
	retry   *Retryer
	log     logger.Logger

	once sync.Once
	wb   Workbook
	err  error
}

// ConnectorOption applies a configuration option to the Connector.
type ConnectorOption func(*Connector)

// WithRetryer sets the retry wrapper applied to every remote call.
func WithRetryer(r *Retryer) ConnectorOption {
	return func(c *Connector) {
		if r != nil {
			c.retry = r
		}
	}
}

// WithLogger sets a custom logger for the connector.
func WithLogger(l logger.Logger) ConnectorOption {
	return func(c *Connector) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConnector creates a Connector over service-account JSON and a
// workbook locator (full spreadsheet URL or bare ID).
func NewConnector(creds []byte, locator string, opts ...ConnectorOption) *Connector {
	c := &Connector{
		creds:   creds,
		locator: locator,
		retry:   NewRetryer(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workbook returns the cached workbook handle, dialing on first call.
// A configuration-class failure (no credentials, no locator) is sticky:
// every later call reports the same error without re-dialing.
func (c *Connector) Workbook(ctx context.Context) (Workbook, error) {
	c.once.Do(func() {
		c.wb, c.err = c.dial(ctx)
		if c.err != nil {
			c.log.Warn(ctx, "backend unavailable", logger.Error(c.err))
		}
	})
	return c.wb, c.err
}

func (c *Connector) dial(ctx context.Context) (Workbook, error) {
	if len(c.creds) == 0 {
		return nil, ErrNoCredentials
	}
	id, err := SpreadsheetID(c.locator)
	if err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(c.creds, credentialScopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account: %w", ErrNoCredentials, err)
	}
	svc, err := gsheets.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	c.log.Info(ctx, "workbook handle established", logger.String("spreadsheet_id", id))
	return &googleWorkbook{svc: svc, id: id, retry: c.retry}, nil
}

// SpreadsheetID extracts the document ID from a locator: either a full
// spreadsheet URL or the bare ID itself.
func SpreadsheetID(locator string) (string, error) {
	if locator == "" {
		return "", ErrNoWorkbook
	}
	if m := spreadsheetIDPattern.FindStringSubmatch(locator); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(locator) {
		return locator, nil
	}
	return "", fmt.Errorf("%w: unrecognized locator %q", ErrNoWorkbook, locator)
}

// googleWorkbook binds the Sheets service to one spreadsheet.
type googleWorkbook struct {
	svc   *gsheets.Service
	id    string
	retry *Retryer
}

func (w *googleWorkbook) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	var ss *gsheets.Spreadsheet
	err := w.retry.Do(ctx, "worksheet.lookup", func() error {
		var e error
		ss, e = w.svc.Spreadsheets.Get(w.id).Fields("sheets.properties").Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &googleWorksheet{wb: w, sheetID: sh.Properties.SheetId, title: title}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWorksheetNotFound, title)
}

func (w *googleWorkbook) AddWorksheet(ctx context.Context, title string, rows, cols int64) (Worksheet, error) {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	var resp *gsheets.BatchUpdateSpreadsheetResponse
	err := w.retry.Do(ctx, "worksheet.add", func() error {
		var e error
		resp, e = w.svc.Spreadsheets.BatchUpdate(w.id, req).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("add worksheet %s: %w", title, err)
	}
	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return &googleWorksheet{wb: w, sheetID: sheetID, title: title}, nil
}

// googleWorksheet addresses one tab through the bound workbook.
type googleWorksheet struct {
	wb      *googleWorkbook
	sheetID int64
	title   string
}

func (ws *googleWorksheet) Title() string { return ws.title }

func (ws *googleWorksheet) ref(a1 string) string {
	if a1 == "" {
		return "'" + ws.title + "'"
	}
	return "'" + ws.title + "'!" + a1
}

func (ws *googleWorksheet) get(ctx context.Context, op, a1 string) ([][]string, error) {
	var resp *gsheets.ValueRange
	err := ws.wb.retry.Do(ctx, op, func() error {
		var e error
		resp, e = ws.wb.svc.Spreadsheets.Values.Get(ws.wb.id, ws.ref(a1)).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ws.ref(a1), err)
	}
	return cellStrings(resp.Values), nil
}

func (ws *googleWorksheet) Row(ctx context.Context, n int) ([]string, error) {
	rows, err := ws.get(ctx, "values.row", fmt.Sprintf("%d:%d", n, n))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (ws *googleWorksheet) Values(ctx context.Context) ([][]string, error) {
	return ws.get(ctx, "values.all", "")
}

func (ws *googleWorksheet) Range(ctx context.Context, a1 string) ([][]string, error) {
	return ws.get(ctx, "values.range", a1)
}

func (ws *googleWorksheet) Update(ctx context.Context, a1 string, values [][]string) error {
	vr := &gsheets.ValueRange{Values: cellValues(values)}
	err := ws.wb.retry.Do(ctx, "values.update", func() error {
		_, e := ws.wb.svc.Spreadsheets.Values.Update(ws.wb.id, ws.ref(a1), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		return e
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", ws.ref(a1), err)
	}
	return nil
}

func (ws *googleWorksheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	return ws.Update(ctx, columnLetter(col)+strconv.Itoa(row), [][]string{{value}})
}

func (ws *googleWorksheet) Append(ctx context.Context, row []string) error {
	vr := &gsheets.ValueRange{Values: cellValues([][]string{row})}
	err := ws.wb.retry.Do(ctx, "values.append", func() error {
		_, e := ws.wb.svc.Spreadsheets.Values.Append(ws.wb.id, ws.ref("A1"), vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return e
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", ws.title, err)
	}
	return nil
}

func (ws *googleWorksheet) DeleteRow(ctx context.Context, row int) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    ws.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	err := ws.wb.retry.Do(ctx, "rows.delete", func() error {
		_, e := ws.wb.svc.Spreadsheets.BatchUpdate(ws.wb.id, req).Context(ctx).Do()
		return e
	})
	if err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row, ws.title, err)
	}
	return nil
}

// cellStrings flattens the API's untyped cells to strings at the boundary.
func cellStrings(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out
}

func cellValues(values [][]string) [][]any {
	out := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(col int) string {
	if col < 1 {
		col = 1
	}
	var out []byte
	for col > 0 {
		col--
		out = append([]byte{byte('A' + col%26)}, out...)
		col /= 26
	}
	return string(out)
}
