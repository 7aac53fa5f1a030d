// Package reconciliation compares physical stock counts with the computed
// ledger and reports surplus and deficit per product.
package reconciliation

import (
	"math"

	"stockledger/internal/identity"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// CompareLine resolves a counted product against the ledger and computes its
// variance. Unmatched lines use a system quantity of 0 and their own price.
func CompareLine(resolver *identity.Resolver, counted models.Product) Line {
	sys, tier := resolver.LookupTier(counted.Name, counted.SKU, counted.UnitOfMeasure)
	matched := tier != identity.NoMatch

	line := Line{
		Counted:   counted,
		System:    sys,
		Matched:   matched,
		Tier:      tier,
		UnitPrice: counted.UnitPrice,
	}
	if matched {
		line.SystemQuantity = sys.Quantity
		line.UnitPrice = sys.UnitPrice
		line.NameDiffers = normalize.CleanString(sys.Name) != normalize.CleanString(counted.Name)
	}

	line.Diff = normalize.Round4(counted.Quantity - line.SystemQuantity)
	line.ValueDiff = line.Diff * line.UnitPrice
	line.Status = Classify(line.Diff)
	return line
}

// Reconcile compares every line of a physical count with the inventory.
func Reconcile(count models.Document, inventory []models.InventoryItem) Result {
	resolver := identity.NewResolver(inventory)

	res := Result{
		DocumentID:     count.ID,
		DocumentNumber: count.DocumentNumber,
		Date:           count.Date,
		Lines:          make([]Line, 0, len(count.ExtractedProducts)),
	}

	for _, p := range count.ExtractedProducts {
		line := CompareLine(resolver, p)
		res.Lines = append(res.Lines, line)

		switch line.Status {
		case StatusSurplus:
			res.Summary.SurplusValue += line.Diff * line.UnitPrice
		case StatusDeficit:
			res.Summary.DeficitValue += math.Abs(line.Diff) * line.UnitPrice
		}
		if line.IsDiscrepancy() {
			res.Summary.DiscrepanciesCount++
		}
		if line.Matched {
			res.Summary.MatchedCount++
		}
	}

	res.Summary.LineCount = len(res.Lines)
	res.Summary.NetValue = res.Summary.SurplusValue - res.Summary.DeficitValue
	return res
}
