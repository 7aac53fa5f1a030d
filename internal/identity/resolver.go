package identity

import (
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// MatchTier reports which lookup strategy matched.
type MatchTier int

const (
	NoMatch MatchTier = iota
	MatchKey
	MatchSKU
	MatchName
)

func (t MatchTier) String() string {
	switch t {
	case MatchKey:
		return "key"
	case MatchSKU:
		return "sku"
	case MatchName:
		return "name"
	default:
		return "none"
	}
}

// Resolver performs the three-tier lookup of a counted line against a
// snapshot of the inventory. The first entry in inventory order wins
// within each tier.
type Resolver struct {
	items  []models.InventoryItem
	byKey  map[string]int
	bySKU  map[string]int
	byName map[string]int
}

// NewResolver indexes the given inventory snapshot.
func NewResolver(items []models.InventoryItem) *Resolver {
	r := &Resolver{
		items:  items,
		byKey:  make(map[string]int, len(items)),
		bySKU:  make(map[string]int, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for i, item := range items {
		addFirst(r.byKey, KeyFromInventoryID(item.ID), i)
		addFirst(r.bySKU, normalize.CleanString(item.SKU), i)
		addFirst(r.byName, normalize.CleanString(item.Name), i)
	}
	return r
}

func addFirst(m map[string]int, k string, i int) {
	if _, ok := m[k]; !ok {
		m[k] = i
	}
}

// Lookup finds the inventory entry for a counted line:
//  1. exact product key
//  2. cleaned SKU, ignoring name and unit
//  3. cleaned name, ignoring unit
//
// The returned item is a copy; ok is false when nothing matches.
func (r *Resolver) Lookup(name, sku, unit string) (models.InventoryItem, bool) {
	item, tier := r.LookupTier(name, sku, unit)
	return item, tier != NoMatch
}

// LookupTier is Lookup that also reports the matching tier.
func (r *Resolver) LookupTier(name, sku, unit string) (models.InventoryItem, MatchTier) {
	if i, ok := r.byKey[ProductKey(name, sku, unit)]; ok {
		return r.items[i], MatchKey
	}

	if s := normalize.CleanString(sku); s != "" {
		if i, ok := r.bySKU[s]; ok {
			return r.items[i], MatchSKU
		}
	}

	if i, ok := r.byName[normalize.CleanString(name)]; ok {
		return r.items[i], MatchName
	}

	return models.InventoryItem{}, NoMatch
}
