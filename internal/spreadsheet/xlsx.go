package spreadsheet

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"stockledger/internal/logger"
	"stockledger/pkg/services"
)

// ReadRows reads the first sheet of an .xlsx workbook. The first row is the
// header row.
func ReadRows(r io.Reader) ([]Row, error) {
	const op = "ReadRows"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open workbook: %w", op, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: workbook has no sheets", op)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", op, sheet, err)
	}

	values := make([][]interface{}, len(raw))
	for i, cells := range raw {
		values[i] = make([]interface{}, len(cells))
		for j, c := range cells {
			values[i][j] = c
		}
	}
	return RowsFromValues(values), nil
}

// XLSXWriter writes tables to a workbook on disk, one sheet per table.
type XLSXWriter struct {
	path string
	log  zerolog.Logger
}

// NewXLSXWriter creates a writer targeting path. The file is replaced on each write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{
		path: path,
		log:  logger.WithComponent("xlsx"),
	}
}

// WriteTable implements services.TableWriter.
func (w *XLSXWriter) WriteTable(ctx context.Context, table services.Table) error {
	const op = "WriteTable"

	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("%s: failed to name sheet: %w", op, err)
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			w.log.Warn().Err(err).Msg("Failed to format header row, continuing anyway")
		}
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s: failed to write row %d: %w", op, i+2, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("%s: failed to save %s: %w", op, w.path, err)
	}

	w.log.Info().
		Str("file", w.path).
		Str("sheet", sheet).
		Int("rows", len(table.Rows)).
		Msg("Table written to workbook")

	return nil
}
