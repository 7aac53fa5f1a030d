// Package identity derives canonical product keys and resolves counted line
// items against the consolidated inventory.
package identity

import (
	"strings"

	"stockledger/internal/normalize"
)

const (
	skuPrefix         = "SKU-"
	namePrefix        = "NAME-"
	inventoryIDPrefix = "INV-KEY-"
)

// ProductKey returns SKU-<sku> when the cleaned SKU is non-empty, otherwise
// NAME-<name>-<unit>. The same product sold in two units without a SKU
// therefore yields two keys.
func ProductKey(name, sku, unit string) string {
	if s := normalize.CleanString(sku); s != "" {
		return skuPrefix + s
	}
	return namePrefix + normalize.CleanString(name) + "-" + normalize.NormalizeUnit(unit)
}

// InventoryID is the synthetic id of the ledger entry for key.
func InventoryID(key string) string {
	return inventoryIDPrefix + key
}

// KeyFromInventoryID strips the synthetic prefix from a ledger entry id.
func KeyFromInventoryID(id string) string {
	return strings.Replace(id, inventoryIDPrefix, "", 1)
}
