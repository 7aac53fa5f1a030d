// Package spreadsheet reads stock count sheets with arbitrary headers and
// writes tabular reports to .xlsx files.
package spreadsheet

import (
	"fmt"
	"strings"

	"stockledger/internal/normalize"
)

// Header aliases per logical field, in priority order.
var (
	NameAliases     = []string{"nome", "descrizione", "prodotto", "item", "name", "articolo"}
	SKUAliases      = []string{"sku", "codice", "code", "art", "articolo", "cod", "barcode"}
	QuantityAliases = []string{"quantita", "qta", "fisico", "scorta", "stock", "quantity", "qty", "reale", "conta"}
	UnitAliases     = []string{"unita", "um", "u.m.", "unit", "uom", "misura", "formato"}
)

// Row is one data row keyed by the sheet's header row. Empty cells are
// treated as absent, the way sheet-to-record converters skip them.
type Row struct {
	headers []string
	cells   []interface{}
}

// NewRow pairs a header row with one data row.
func NewRow(headers []string, cells []interface{}) Row {
	return Row{headers: headers, cells: cells}
}

// RowsFromValues treats the first row as headers and the rest as data.
// Fully empty rows are skipped.
func RowsFromValues(values [][]interface{}) []Row {
	if len(values) == 0 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(cellString(h))
	}

	var rows []Row
	for _, cells := range values[1:] {
		row := NewRow(headers, cells)
		if row.empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Get resolves a field by comparing cleaned headers with each alias in
// order. The first alias with a matching, non-empty cell wins.
func (r Row) Get(aliases []string) (interface{}, bool) {
	for _, alias := range aliases {
		want := normalize.CleanString(alias)
		for i, h := range r.headers {
			if normalize.CleanString(h) != want {
				continue
			}
			if v := r.cell(i); v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// GetString is Get rendered as trimmed text, or def when absent.
func (r Row) GetString(aliases []string, def string) string {
	v, ok := r.Get(aliases)
	if !ok {
		return def
	}
	if s := strings.TrimSpace(cellString(v)); s != "" {
		return s
	}
	return def
}

func (r Row) cell(i int) interface{} {
	if i >= len(r.cells) || r.cells[i] == nil {
		return nil
	}
	if s, ok := r.cells[i].(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return r.cells[i]
}

func (r Row) empty() bool {
	for i := range r.cells {
		if r.cell(i) != nil {
			return false
		}
	}
	return true
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
