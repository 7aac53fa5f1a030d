package services

import "context"

// Table is a rectangular report ready to be written to a spreadsheet.
type Table struct {
	Name    string          // sheet or tab name
	Headers []string        // first row
	Rows    [][]interface{} // one slice per data row, aligned with Headers
}

// TableWriter writes a table to some spreadsheet destination.
type TableWriter interface {
	WriteTable(ctx context.Context, table Table) error
}
