package ledger

import (
	"fmt"
	"sort"
	"strings"

	"stockledger/internal/locale"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// Grouping selects how the inventory view is bucketed.
type Grouping string

const (
	GroupByMonth    Grouping = "month"
	GroupByCategory Grouping = "category"
	GroupBySupplier Grouping = "supplier"
	GroupNone       Grouping = "none"
)

// ParseGrouping validates a grouping name.
func ParseGrouping(s string) (Grouping, error) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(s))); g {
	case GroupByMonth, GroupByCategory, GroupBySupplier, GroupNone:
		return g, nil
	case "":
		return GroupByMonth, nil
	}
	return "", fmt.Errorf("unknown grouping %q (want month, category, supplier or none)", s)
}

// Group is a labelled bucket of inventory entries.
type Group struct {
	Label string
	Items []models.InventoryItem
}

// NormalizeCategory collapses produce categories onto Verdura and Frutta and
// capitalizes everything else.
func NormalizeCategory(cat string) string {
	if cat == "" {
		return "Generico"
	}
	c := strings.ToLower(strings.TrimSpace(cat))
	for _, veg := range []string{"vegetable", "verdura", "insalata", "ortaggi"} {
		if strings.Contains(c, veg) {
			return "Verdura"
		}
	}
	if strings.Contains(c, "fruit") || strings.Contains(c, "frutta") {
		return "Frutta"
	}
	return normalize.Capitalize(cat)
}

// Search sorts entries by last load date, newest first, and keeps those whose
// name, supplier, SKU, document number or category contains term.
func Search(items []models.InventoryItem, term string) []models.InventoryItem {
	term = strings.ToLower(term)

	out := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if matchesTerm(item, term) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastDate > out[j].LastDate
	})
	return out
}

func matchesTerm(item models.InventoryItem, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range []string{item.Name, item.Supplier, item.SKU, item.InvoiceNumber, item.Category} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// GroupItems buckets entries by the requested grouping, preserving the order
// in which labels first appear.
func GroupItems(items []models.InventoryItem, by Grouping, lang locale.Lang) []Group {
	if by == GroupNone {
		return []Group{{Label: lang.Label("inventory"), Items: items}}
	}

	index := make(map[string]int)
	var groups []Group
	for _, item := range items {
		label := groupLabel(item, by, lang)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func groupLabel(item models.InventoryItem, by Grouping, lang locale.Lang) string {
	switch by {
	case GroupByMonth:
		d := normalize.ParseDate(item.LastDate)
		if d.IsZero() {
			return lang.Label("unknown")
		}
		return lang.MonthYear(d)
	case GroupByCategory:
		return NormalizeCategory(item.Category)
	case GroupBySupplier:
		if item.Supplier == "" {
			return lang.Label("unknown")
		}
		return item.Supplier
	}
	return "Altro"
}
