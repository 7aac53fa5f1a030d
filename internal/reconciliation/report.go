package reconciliation

import (
	"stockledger/internal/locale"
	"stockledger/internal/normalize"
	"stockledger/pkg/services"
)

// ReportSheetName is the tab name used for reconciliation exports.
const ReportSheetName = "Riconciliazione"

// StatusLabel localizes a line status.
func StatusLabel(s Status, lang locale.Lang) string {
	switch s {
	case StatusSurplus:
		return lang.Label("surplus")
	case StatusDeficit:
		return lang.Label("deficit")
	default:
		return lang.Label("aligned")
	}
}

// Report renders a reconciliation result as an exportable table. It is built
// from the same lines the summary is computed from.
func Report(res Result, lang locale.Lang, onlyDiscrepancies bool) services.Table {
	lines := res.Lines
	if onlyDiscrepancies {
		lines = res.Discrepancies()
	}

	table := services.Table{
		Name: ReportSheetName,
		Headers: []string{
			lang.Label("skuCol"),
			lang.Label("realProduct"),
			lang.Label("systemMatch"),
			"U.M.",
			lang.Label("countedQty"),
			lang.Label("systemQty"),
			lang.Label("stockDiff"),
			lang.Label("valueDiff"),
			lang.Label("status"),
		},
		Rows: make([][]interface{}, 0, len(lines)),
	}

	for _, l := range lines {
		sku := l.Counted.SKU
		if sku == "" {
			sku = l.System.SKU
		}
		if sku == "" {
			sku = "N/D"
		}

		match := lang.Label("matchNo")
		if l.Matched {
			match = lang.Label("matchYes")
		}

		table.Rows = append(table.Rows, []interface{}{
			sku,
			l.Counted.Name,
			match,
			l.Counted.UnitOfMeasure,
			l.Counted.Quantity,
			l.SystemQuantity,
			l.Diff,
			normalize.RoundTo(l.ValueDiff, 2),
			StatusLabel(l.Status, lang),
		})
	}

	return table
}
