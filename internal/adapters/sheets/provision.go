package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tally/internal/domain/schema"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Worksheet capacity at creation time. At least 26 columns are
// provisioned regardless of header width so later range updates never
// hit a resize error.
const (
	provisionRows = 1000
	minColumns    = 26
)

// Provisioner ensures a worksheet exists for a logical table with its
// canonical header in row 1, creating or repairing as needed.
type Provisioner struct {
	log logger.Logger
}

// ProvisionerOption applies a configuration option to the Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionerLogger sets a custom logger.
func WithProvisionerLogger(l logger.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure returns a ready worksheet whose first row equals the canonical
// header. Repeated calls on a correct worksheet cost one read and zero
// writes. Errors propagate to the repository layer, which decides
// between fallback and raise; nothing is swallowed here.
func (p *Provisioner) Ensure(ctx context.Context, wb Workbook, table string, header []string) (Worksheet, error) {
	ws, err := wb.Worksheet(ctx, table)
	if errors.Is(err, ErrWorksheetNotFound) {
		return p.create(ctx, wb, table, header)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure %s: %w", table, err)
	}

	first, err := ws.Row(ctx, 1)
	if err != nil {
		// A failed header read is treated as an empty header; the
		// rewrite below restores it.
		p.log.Warn(ctx, "header read failed; repairing", logger.String("sheet", table), logger.Error(err))
		first = nil
	}
	if schema.Matches(first, header) {
		return ws, nil
	}

	if err := p.writeHeader(ctx, ws, table, header); err != nil {
		return nil, err
	}
	return ws, nil
}

func (p *Provisioner) create(ctx context.Context, wb Workbook, table string, header []string) (Worksheet, error) {
	cols := int64(len(header))
	if cols < minColumns {
		cols = minColumns
	}
	ws, err := wb.AddWorksheet(ctx, table, provisionRows, cols)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	if err := p.writeHeader(ctx, ws, table, header); err != nil {
		return nil, err
	}
	p.log.Info(ctx, "worksheet created", logger.String("sheet", table))
	return ws, nil
}

func (p *Provisioner) writeHeader(ctx context.Context, ws Worksheet, table string, header []string) error {
	if err := ws.Update(ctx, schema.HeaderRange(len(header)), [][]string{header}); err != nil {
		return fmt.Errorf("write header of %s: %w", table, err)
	}
	metrics.RecordHeaderRepair(table)
	return nil
}
