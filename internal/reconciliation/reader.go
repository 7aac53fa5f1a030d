package reconciliation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"stockledger/internal/logger"
	"stockledger/internal/spreadsheet"
)

// RangeReader reads raw cell values. *sheets.Service satisfies it.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// CountReader reads physical count rows from a spreadsheet tab.
type CountReader struct {
	source RangeReader
	log    zerolog.Logger
}

// NewCountReader creates a reader over the given source.
func NewCountReader(source RangeReader) *CountReader {
	return &CountReader{
		source: source,
		log:    logger.WithComponent("count-reader"),
	}
}

// ReadCountRows reads the whole tab. The first row holds the headers.
func (cr *CountReader) ReadCountRows(ctx context.Context, sheetName string) ([]spreadsheet.Row, error) {
	const op = "ReadCountRows"

	cr.log.Info().Str("sheet", sheetName).Msg("Reading physical count")

	values, err := cr.source.ReadRange(ctx, sheetName)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}

	if len(values) < 2 {
		return nil, fmt.Errorf("%s: %s sheet has no data rows", op, sheetName)
	}

	rows := spreadsheet.RowsFromValues(values)

	cr.log.Info().
		Int("total_rows", len(values)-1).
		Int("data_rows", len(rows)).
		Str("sheet", sheetName).
		Msg("Physical count read successfully")

	return rows, nil
}
