package reconciliation_test

import (
	"fmt"

	"stockledger/internal/identity"
	"stockledger/internal/reconciliation"
	"stockledger/pkg/models"
)

func ExampleReconcile() {
	inventory := []models.InventoryItem{
		{
			ID:            identity.InventoryID(identity.ProductKey("Pomodori", "", "kg")),
			Name:          "Pomodori",
			Quantity:      20,
			UnitOfMeasure: models.UnitWeight,
			UnitPrice:     1.5,
		},
		{
			ID:            identity.InventoryID(identity.ProductKey("Mele Golden", "M-01", "kg")),
			SKU:           "M-01",
			Name:          "Mele Golden",
			Quantity:      10,
			UnitOfMeasure: models.UnitWeight,
			UnitPrice:     2,
		},
	}

	count := models.Document{
		ID:   "PC-1",
		Type: models.TypePhysicalCount,
		ExtractedProducts: []models.Product{
			{Name: "POMODORI", Quantity: 18, UnitOfMeasure: "pz"},
			{Name: "Mele", SKU: "m01", Quantity: 12, UnitOfMeasure: "KG"},
			{Name: "Basilico", Quantity: 3, UnitOfMeasure: "pz", UnitPrice: 0.8},
		},
	}

	res := reconciliation.Reconcile(count, inventory)
	for _, l := range res.Lines {
		fmt.Printf("%s [%s] %+.2f %s\n", l.Counted.Name, l.Tier, l.Diff, l.Status)
	}
	s := res.Summary
	fmt.Printf("matched %d, discrepancies %d\n", s.MatchedCount, s.DiscrepanciesCount)
	fmt.Printf("surplus %.2f deficit %.2f net %.2f\n", s.SurplusValue, s.DeficitValue, s.NetValue)
	// Output:
	// POMODORI [name] -2.00 DEFICIT
	// Mele [key] +2.00 SURPLUS
	// Basilico [none] +3.00 SURPLUS
	// matched 2, discrepancies 3
	// surplus 6.40 deficit 3.00 net 3.40
}
