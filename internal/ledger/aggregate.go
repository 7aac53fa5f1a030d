// Package ledger folds invoices and delivery notes into the consolidated
// inventory and derives the views built on top of it.
//
// The inventory is a pure projection of the document set. It is recomputed
// from scratch on every read and never patched incrementally.
package ledger

import (
	"math"
	"sort"

	"stockledger/internal/identity"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// QuantityEpsilon is the float-noise threshold below which an entry is hidden.
const QuantityEpsilon = 0.0001

// Aggregate folds the products of every invoice and delivery note into one
// entry per product key. Credit notes contribute with inverted sign.
// Documents of other types are ignored.
//
// Quantity and value are order independent. The latest-document metadata
// uses a non-strict date comparison, so among same-dated documents the last
// one processed wins.
func Aggregate(docs []models.Document) []models.InventoryItem {
	index := make(map[string]int)
	var items []models.InventoryItem

	for _, doc := range docs {
		if doc.Type != models.TypeInvoice && doc.Type != models.TypeDeliveryNote {
			continue
		}

		multiplier := 1.0
		if doc.IsCreditNote {
			multiplier = -1
		}

		for _, p := range doc.ExtractedProducts {
			key := identity.ProductKey(p.Name, p.SKU, p.UnitOfMeasure)

			i, seen := index[key]
			if !seen {
				index[key] = len(items)
				items = append(items, models.InventoryItem{
					ID:            identity.InventoryID(key),
					SKU:           p.SKU,
					Name:          p.Name,
					Quantity:      normalize.Round4(p.Quantity * multiplier),
					UnitOfMeasure: normalize.NormalizeUnit(p.UnitOfMeasure),
					UnitPrice:     p.UnitPrice,
					TotalPrice:    normalize.Round4(p.TotalPrice * multiplier),
					Category:      p.Category,
					LastDate:      doc.Date,
					Supplier:      doc.Supplier,
					InvoiceNumber: doc.DocumentNumber,
				})
				continue
			}

			entry := &items[i]
			entry.Quantity = normalize.Round4(entry.Quantity + p.Quantity*multiplier)
			entry.TotalPrice = normalize.Round4(entry.TotalPrice + p.TotalPrice*multiplier)

			// A zero quantity leaves the previous unit price in place.
			if entry.Quantity != 0 {
				entry.UnitPrice = math.Abs(entry.TotalPrice / entry.Quantity)
			}

			if doc.Date >= entry.LastDate {
				entry.LastDate = doc.Date
				entry.Supplier = doc.Supplier
				entry.InvoiceNumber = doc.DocumentNumber
			}
		}
	}

	visible := items[:0]
	for _, item := range items {
		if math.Abs(item.Quantity) > QuantityEpsilon {
			visible = append(visible, item)
		}
	}
	return visible
}

// AvailableYears lists the distinct years of invoices and delivery notes,
// newest first.
func AvailableYears(docs []models.Document) []int {
	seen := make(map[int]bool)
	var years []int
	for _, doc := range docs {
		if doc.Type != models.TypeInvoice && doc.Type != models.TypeDeliveryNote {
			continue
		}
		y := normalize.Year(doc.Date)
		if y == 0 || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
