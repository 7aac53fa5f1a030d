package ledger

import (
	"stockledger/internal/locale"
	"stockledger/pkg/models"
	"stockledger/pkg/services"
)

// InventorySheetName is the tab name used for inventory exports.
const InventorySheetName = "Giacenze"

// InventoryTable renders one row per ledger entry with localized headers.
// Prices are preformatted strings; quantities stay numeric.
func InventoryTable(items []models.InventoryItem, lang locale.Lang) services.Table {
	table := services.Table{
		Name: InventorySheetName,
		Headers: []string{
			lang.Label("productSku"),
			lang.Label("description"),
			lang.Label("categories"),
			lang.Label("supplier"),
			lang.Label("stock"),
			"U.M.",
			lang.Label("avgPrice"),
			lang.Label("totalValue"),
			lang.Label("lastLoad"),
		},
		Rows: make([][]interface{}, 0, len(items)),
	}

	for _, item := range items {
		sku := item.SKU
		if sku == "" {
			sku = "N/D"
		}
		table.Rows = append(table.Rows, []interface{}{
			sku,
			item.Name,
			item.Category,
			item.Supplier,
			item.Quantity,
			item.UnitOfMeasure,
			lang.Number(item.UnitPrice),
			lang.Number(item.TotalPrice),
			item.LastDate,
		})
	}
	return table
}
