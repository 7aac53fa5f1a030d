package ledger

import (
	"sort"
	"strings"

	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// MonthlySpend is the document total for one calendar month.
type MonthlySpend struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// Dashboard holds the headline figures of the warehouse.
type Dashboard struct {
	TotalValue     float64            `json:"totalValue"`
	UniqueProducts int                `json:"uniqueProducts"`
	Suppliers      int                `json:"suppliers"`
	QuantityByUnit map[string]float64 `json:"quantityByUnit"`
	Monthly        []MonthlySpend     `json:"monthly"`
}

// BuildDashboard summarizes the inventory and the documents it came from.
func BuildDashboard(items []models.InventoryItem, docs []models.Document) Dashboard {
	d := Dashboard{
		QuantityByUnit: map[string]float64{
			models.UnitPieces: 0,
			models.UnitWeight: 0,
			models.UnitCase:   0,
		},
	}

	names := make(map[string]bool)
	for _, item := range items {
		d.TotalValue += item.TotalPrice
		names[strings.ToLower(item.Name)] = true

		unit := strings.ToUpper(item.UnitOfMeasure)
		if unit == "" {
			unit = models.UnitPieces
		}
		d.QuantityByUnit[unit] += item.Quantity
	}
	d.TotalValue = normalize.RoundTo(d.TotalValue, 2)
	d.UniqueProducts = len(names)

	suppliers := make(map[string]bool)
	monthIndex := make(map[string]int)
	for _, doc := range docs {
		if doc.Type != models.TypeInvoice && doc.Type != models.TypeDeliveryNote {
			continue
		}
		suppliers[strings.ToLower(doc.Supplier)] = true

		if len(doc.Date) < 7 {
			continue
		}
		month := doc.Date[:7]
		i, ok := monthIndex[month]
		if !ok {
			i = len(d.Monthly)
			monthIndex[month] = i
			d.Monthly = append(d.Monthly, MonthlySpend{Month: month})
		}
		d.Monthly[i].Total = normalize.RoundTo(d.Monthly[i].Total+doc.TotalAmount, 2)
	}
	d.Suppliers = len(suppliers)
	sort.Slice(d.Monthly, func(i, j int) bool { return d.Monthly[i].Month < d.Monthly[j].Month })

	return d
}
