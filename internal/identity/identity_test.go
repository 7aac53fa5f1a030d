package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/pkg/models"
)

func TestProductKey(t *testing.T) {
	assert.Equal(t, ProductKey("Pomodori", "", "kg"), ProductKey("POMODORI", "", "KG"))
	assert.Equal(t, ProductKey("X", "ABC-1", "pz"), ProductKey("X", "abc1", "UN"))

	assert.Equal(t, "SKU-abc1", ProductKey("anything", "ABC-1", "kg"))
	assert.Equal(t, "NAME-pomodori-KG", ProductKey("Pomodori", "", "kg"))
	assert.Equal(t, "NAME-pomodori-UD", ProductKey("Pomodori", "--", "pz"))

	assert.NotEqual(t, ProductKey("Mele", "", "kg"), ProductKey("Mele", "", "cassa"))
}

func TestInventoryIDRoundTrip(t *testing.T) {
	key := ProductKey("Mele", "", "kg")
	assert.Equal(t, "INV-KEY-NAME-mele-KG", InventoryID(key))
	assert.Equal(t, key, KeyFromInventoryID(InventoryID(key)))
}

func inventoryFixture() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: InventoryID("SKU-a100"), SKU: "A-100", Name: "Zucchine", UnitOfMeasure: "KG", Quantity: 10},
		{ID: InventoryID("NAME-mele-KG"), Name: "Mele", UnitOfMeasure: "KG", Quantity: 4},
		{ID: InventoryID("NAME-mele-CJ"), Name: "Mele", UnitOfMeasure: "CJ", Quantity: 2},
		{ID: InventoryID("SKU-b200"), SKU: "B200", Name: "Pere Abate", UnitOfMeasure: "KG", Quantity: 3},
	}
}

func TestResolverTiers(t *testing.T) {
	r := NewResolver(inventoryFixture())

	tests := []struct {
		name     string
		lineName string
		sku      string
		unit     string
		wantID   string
		wantTier MatchTier
	}{
		{"exact sku key", "whatever", "a-100", "pz", "INV-KEY-SKU-a100", MatchKey},
		{"exact name key", "MELE", "", "casse", "INV-KEY-NAME-mele-CJ", MatchKey},
		{"name ignores unit", "Mele", "", "pz", "INV-KEY-NAME-mele-KG", MatchName},
		{"sku key miss falls to name", "Pere abate", "ZZZ", "kg", "INV-KEY-SKU-b200", MatchName},
		{"line without sku matches sku entry by name", "Zucchine", "", "kg", "INV-KEY-SKU-a100", MatchName},
		{"no match", "Banane", "", "kg", "", NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, tier := r.LookupTier(tt.lineName, tt.sku, tt.unit)
			assert.Equal(t, tt.wantTier, tier)
			assert.Equal(t, tt.wantID, item.ID)
		})
	}
}

func TestResolverSKUTier(t *testing.T) {
	items := []models.InventoryItem{
		// Entry keyed by name but carrying a SKU: only tier 2 can reach it by SKU.
		{ID: InventoryID("NAME-basilico-UD"), SKU: "BAS 9", Name: "Basilico"},
	}
	r := NewResolver(items)

	item, tier := r.LookupTier("Basilico fresco", "bas-9", "pz")
	require.Equal(t, MatchSKU, tier)
	assert.Equal(t, "Basilico", item.Name)
}

func TestResolverEmpty(t *testing.T) {
	_, ok := NewResolver(nil).Lookup("Mele", "", "kg")
	assert.False(t, ok)
}
