package spreadsheet

import (
	"fmt"

	"stockledger/internal/identity"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

const (
	// DefaultItemName marks a row without a usable name; such rows are dropped.
	DefaultItemName = "Articolo"

	// DefaultCountCategory is used for counted items unknown to the ledger.
	DefaultCountCategory = "Inventory"
)

// CountHeader carries the document fields copied onto every counted product.
type CountHeader struct {
	DocumentID     string
	DocumentNumber string
	Date           string
	Supplier       string
}

// CountProducts converts sheet rows into physical count lines. Prices and
// categories come from the matched ledger entry when there is one.
func CountProducts(rows []Row, resolver *identity.Resolver, hdr CountHeader) []models.Product {
	products := make([]models.Product, 0, len(rows))

	for idx, row := range rows {
		name := row.GetString(NameAliases, DefaultItemName)
		if name == DefaultItemName || name == "" {
			continue
		}

		sku := row.GetString(SKUAliases, "")
		raw, _ := row.Get(QuantityAliases)
		quantity := normalize.ParseQuantity(raw)
		unit := normalize.NormalizeUnit(row.GetString(UnitAliases, models.UnitPieces))

		unitPrice := 0.0
		category := DefaultCountCategory
		if sys, ok := resolver.Lookup(name, sku, unit); ok {
			unitPrice = sys.UnitPrice
			category = sys.Category
		}

		products = append(products, models.Product{
			ID:            fmt.Sprintf("%s-%d", hdr.DocumentID, idx),
			SKU:           sku,
			Name:          name,
			Quantity:      quantity,
			UnitOfMeasure: unit,
			UnitPrice:     unitPrice,
			TotalPrice:    normalize.Round4(quantity * unitPrice),
			Category:      category,
			InvoiceDate:   hdr.Date,
			InvoiceID:     hdr.DocumentID,
			InvoiceNumber: hdr.DocumentNumber,
			Supplier:      hdr.Supplier,
		})
	}

	return products
}
