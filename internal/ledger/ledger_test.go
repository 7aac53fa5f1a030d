package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/locale"
	"stockledger/pkg/models"
)

func invoice(id, date, supplier string, credit bool, products ...models.Product) models.Document {
	return models.Document{
		ID:                id,
		DocumentNumber:    "N-" + id,
		Type:              models.TypeInvoice,
		Date:              date,
		Supplier:          supplier,
		IsCreditNote:      credit,
		ExtractedProducts: products,
	}
}

func product(name, sku, unit string, qty, total float64) models.Product {
	unitPrice := 0.0
	if qty != 0 {
		unitPrice = total / qty
	}
	return models.Product{Name: name, SKU: sku, UnitOfMeasure: unit, Quantity: qty, TotalPrice: total, UnitPrice: unitPrice, Category: "verdura"}
}

func byID(items []models.InventoryItem) map[string]models.InventoryItem {
	m := make(map[string]models.InventoryItem, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return m
}

func TestAggregateMergesByKey(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2024-01-10", "Orto Srl", false,
			product("Pomodori", "", "kg", 10, 20),
			product("Mele", "M-1", "pz", 5, 5),
		),
		invoice("B", "2024-02-01", "Campi Spa", false,
			product("POMODORI", "", "KG", 5, 12),
			product("mele golden", "m1", "CT", 3, 6),
		),
	}

	items := Aggregate(docs)
	require.Len(t, items, 2)

	got := byID(items)
	pom := got["INV-KEY-NAME-pomodori-KG"]
	assert.Equal(t, 15.0, pom.Quantity)
	assert.Equal(t, 32.0, pom.TotalPrice)
	assert.InDelta(t, 32.0/15.0, pom.UnitPrice, 1e-9)
	assert.Equal(t, "2024-02-01", pom.LastDate)
	assert.Equal(t, "Campi Spa", pom.Supplier)
	assert.Equal(t, "N-B", pom.InvoiceNumber)
	assert.Equal(t, "KG", pom.UnitOfMeasure)

	mele := got["INV-KEY-SKU-m1"]
	assert.Equal(t, 8.0, mele.Quantity)
	assert.Equal(t, "Mele", mele.Name, "first-seen line keeps its name")
	assert.Equal(t, "UD", mele.UnitOfMeasure, "first-seen line sets the unit")
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := invoice("A", "2024-03-01", "X", false, product("Carote", "", "kg", 1.1, 2.2), product("Cipolle", "C9", "kg", 0.3, 0.7))
	b := invoice("B", "2024-03-01", "Y", false, product("carote", "", "kg", 2.2, 4.4), product("Cipolle", "c-9", "cj", 0.1, 0.2))
	c := invoice("C", "2024-02-01", "Z", true, product("Carote", "", "kg", 0.3, 0.6))

	forward := byID(Aggregate([]models.Document{a, b, c}))
	backward := byID(Aggregate([]models.Document{c, b, a}))

	require.Len(t, backward, len(forward))
	for id, item := range forward {
		other, ok := backward[id]
		require.True(t, ok, id)
		assert.Equal(t, item.Quantity, other.Quantity, id)
		assert.Equal(t, item.TotalPrice, other.TotalPrice, id)
	}
}

func TestAggregateSameDateLastProcessedWins(t *testing.T) {
	a := invoice("A", "2024-03-01", "First", false, product("Carote", "", "kg", 1, 1))
	b := invoice("B", "2024-03-01", "Second", false, product("Carote", "", "kg", 1, 1))

	items := Aggregate([]models.Document{a, b})
	require.Len(t, items, 1)
	assert.Equal(t, "Second", items[0].Supplier)

	items = Aggregate([]models.Document{b, a})
	assert.Equal(t, "First", items[0].Supplier)
}

func TestAggregateCreditNote(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2024-01-01", "S", false, product("Mele", "", "kg", 25, 50)),
		invoice("NC", "2024-01-05", "S", true, product("Mele", "", "kg", 10, 20)),
	}

	items := Aggregate(docs)
	require.Len(t, items, 1)
	assert.Equal(t, 15.0, items[0].Quantity)
	assert.Equal(t, 30.0, items[0].TotalPrice)
}

func TestAggregateCreditNoteFirstSeenIsNegative(t *testing.T) {
	items := Aggregate([]models.Document{invoice("NC", "2024-01-05", "S", true, product("Pere", "", "kg", 4, 8))})
	require.Len(t, items, 1)
	assert.Equal(t, -4.0, items[0].Quantity)
	assert.Equal(t, -8.0, items[0].TotalPrice)
}

func TestAggregateDropsNoise(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2024-01-01", "S", false, product("Sale", "", "kg", 0.1, 1), product("Olio", "", "pz", 2, 10)),
		invoice("B", "2024-01-02", "S", false, product("Sale", "", "kg", 0.2, 2)),
		invoice("C", "2024-01-03", "S", true, product("Sale", "", "kg", 0.30005, 3)),
	}

	items := Aggregate(docs)
	require.Len(t, items, 1)
	assert.Equal(t, "Olio", items[0].Name)
}

func TestAggregateZeroQuantityKeepsUnitPrice(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2024-01-01", "S", false, product("Sale", "", "kg", 2, 4)),
		invoice("B", "2024-01-02", "S", true, product("Sale", "", "kg", 2, 3)),
		invoice("C", "2024-01-03", "S", false, product("Sale", "", "kg", 0, 1)),
	}
	// After B the quantity is 0 so the unit price stays at the first value (2).
	// After C quantity is still 0: entry is filtered out.
	assert.Empty(t, Aggregate(docs))
}

func TestAggregateIgnoresOtherTypes(t *testing.T) {
	count := invoice("PC", "2024-01-01", "S", false, product("Mele", "", "kg", 5, 5))
	count.Type = models.TypePhysicalCount
	review := invoice("R", "2024-01-01", "S", false, product("Mele", "", "kg", 5, 5))
	review.Type = models.TypeReviewInvoice

	assert.Empty(t, Aggregate([]models.Document{count, review}))
}

func TestAvailableYears(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2023-05-01", "S", false),
		invoice("B", "2024-01-01", "S", false),
		invoice("C", "2023-12-31", "S", false),
	}
	note := invoice("D", "2022-06-06", "S", false)
	note.Type = models.TypeDeliveryNote
	count := invoice("E", "2019-06-06", "S", false)
	count.Type = models.TypePhysicalCount
	docs = append(docs, note, count)

	assert.Equal(t, []int{2024, 2023, 2022}, AvailableYears(docs))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "Generico", NormalizeCategory(""))
	assert.Equal(t, "Verdura", NormalizeCategory("Vegetables"))
	assert.Equal(t, "Verdura", NormalizeCategory("INSALATA mista"))
	assert.Equal(t, "Frutta", NormalizeCategory("fresh fruit"))
	assert.Equal(t, "Latticini", NormalizeCategory("LATTICINI"))
}

func TestSearchAndGroup(t *testing.T) {
	items := []models.InventoryItem{
		{ID: "1", Name: "Mele", Supplier: "Orto", LastDate: "2024-01-10", Category: "frutta"},
		{ID: "2", Name: "Carote", Supplier: "", LastDate: "2024-03-02", Category: "ortaggi"},
		{ID: "3", Name: "Pere", Supplier: "Orto", LastDate: "2024-03-20", Category: "fruit", SKU: "P-77"},
	}

	found := Search(items, "orto")
	require.Len(t, found, 2)
	assert.Equal(t, "3", found[0].ID, "newest first")

	found = Search(items, "p-77")
	require.Len(t, found, 1)

	all := Search(items, "")
	require.Len(t, all, 3)

	byMonth := GroupItems(all, GroupByMonth, locale.Italian)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "marzo 2024", byMonth[0].Label)
	assert.Len(t, byMonth[0].Items, 2)

	byCat := GroupItems(all, GroupByCategory, locale.English)
	require.Len(t, byCat, 2)
	assert.Equal(t, "Frutta", byCat[0].Label)

	bySupplier := GroupItems(all, GroupBySupplier, locale.Italian)
	assert.Equal(t, "Sconosciuto", bySupplier[1].Label)

	none := GroupItems(all, GroupNone, locale.English)
	require.Len(t, none, 1)
	assert.Equal(t, "Inventory", none[0].Label)
}

func TestParseGrouping(t *testing.T) {
	g, err := ParseGrouping("")
	require.NoError(t, err)
	assert.Equal(t, GroupByMonth, g)

	_, err = ParseGrouping("weekly")
	assert.Error(t, err)
}

func TestBuildDashboard(t *testing.T) {
	docs := []models.Document{
		invoice("A", "2024-02-01", "Orto", false, product("Mele", "", "kg", 10, 20)),
		invoice("B", "2024-01-15", "orto", false, product("Uova", "", "pz", 12, 6)),
	}
	docs[0].TotalAmount = 20
	docs[1].TotalAmount = 6

	dash := BuildDashboard(Aggregate(docs), docs)
	assert.Equal(t, 26.0, dash.TotalValue)
	assert.Equal(t, 2, dash.UniqueProducts)
	assert.Equal(t, 1, dash.Suppliers)
	assert.Equal(t, 10.0, dash.QuantityByUnit["KG"])
	assert.Equal(t, 12.0, dash.QuantityByUnit["UD"])
	assert.Equal(t, 0.0, dash.QuantityByUnit["CJ"])
	require.Len(t, dash.Monthly, 2)
	assert.Equal(t, "2024-01", dash.Monthly[0].Month)
}

func TestInventoryTable(t *testing.T) {
	items := []models.InventoryItem{
		{SKU: "", Name: "Mele", Category: "Frutta", Supplier: "Orto", Quantity: 10, UnitOfMeasure: "KG", UnitPrice: 2, TotalPrice: 1234.5, LastDate: "2024-02-01"},
	}

	table := InventoryTable(items, locale.Italian)
	assert.Equal(t, InventorySheetName, table.Name)
	assert.Equal(t, "Descrizione", table.Headers[1])
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "N/D", row[0])
	assert.Equal(t, 10.0, row[4])
	assert.Equal(t, "2,00", row[6])
	assert.Equal(t, "1.234,50", row[7])

	en := InventoryTable(items, locale.English)
	assert.Equal(t, "Last Load", en.Headers[8])
	assert.Equal(t, "1,234.50", en.Rows[0][7])
}
