// Package locale holds the user-facing labels and number formatting for the
// two supported interface languages.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Lang string

const (
	Italian Lang = "it"
	English Lang = "en"
)

// Parse maps a config value to a language, defaulting to Italian.
func Parse(s string) Lang {
	if strings.EqualFold(strings.TrimSpace(s), string(English)) {
		return English
	}
	return Italian
}

func (l Lang) tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Italian
}

var monthNames = map[Lang][12]string{
	Italian: {"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
	English: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// MonthYear renders "marzo 2024" / "March 2024".
func (l Lang) MonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d", l.month(t.Month()), t.Year())
}

// DayMonthYear renders "05 marzo 2024" / "March 05, 2024".
func (l Lang) DayMonthYear(t time.Time) string {
	if l == English {
		return fmt.Sprintf("%s %02d, %d", l.month(t.Month()), t.Day(), t.Year())
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), l.month(t.Month()), t.Year())
}

func (l Lang) month(m time.Month) string {
	names, ok := monthNames[l]
	if !ok {
		names = monthNames[Italian]
	}
	return names[m-1]
}

// Number formats v with two decimals and locale grouping ("1.234,50").
func (l Lang) Number(v float64) string {
	return message.NewPrinter(l.tag()).Sprintf("%.2f", v)
}

// Currency formats v as an euro amount.
func (l Lang) Currency(v float64) string {
	if l == English {
		return "€" + l.Number(v)
	}
	return l.Number(v) + " €"
}

// Label returns the translation for key, or key itself when unknown.
func (l Lang) Label(key string) string {
	if t, ok := labels[key]; ok {
		if l == English {
			return t[1]
		}
		return t[0]
	}
	return key
}

// labels maps a key to its Italian and English text.
var labels = map[string][2]string{
	"productSku":  {"Codice", "SKU"},
	"categories":  {"Categoria", "Category"},
	"supplier":    {"Fornitore", "Supplier"},
	"stock":       {"Giacenza", "Stock"},
	"totalValue":  {"Valore Totale (€)", "Total Value (€)"},
	"inventory":   {"Magazzino", "Inventory"},
	"allDocs":     {"Tutti i documenti", "All documents"},
	"today":       {"Oggi", "Today"},
	"week":        {"Settimana", "Week"},
	"year":        {"Anno", "Year"},
	"unknown":     {"Sconosciuto", "Unknown"},
	"matchYes":    {"SÌ", "YES"},
	"matchNo":     {"NO (Nuovo)", "NO (New)"},
	"aligned":     {"ALLINEATO", "ALIGNED"},
	"surplus":     {"ECCEDENZA", "SURPLUS"},
	"deficit":     {"AMMANCO", "DEFICIT"},
	"skuCol":      {"Codice/SKU", "Code/SKU"},
	"realProduct": {"Prodotto Reale", "Counted Product"},
	"systemMatch": {"Match Sistema", "System Match"},
	"countedQty":  {"Quantità Rilevata (FISICO)", "Counted Quantity (PHYSICAL)"},
	"systemQty":   {"Quantità Calcolata (SISTEMA)", "Computed Quantity (SYSTEM)"},
	"stockDiff":   {"Differenza Stock", "Stock Difference"},
	"valueDiff":   {"Valore Scostamento (€)", "Variance Value (€)"},
	"status":      {"Status", "Status"},
	"description": {"Descrizione", "Description"},
	"avgPrice":    {"Prezzo Medio (€)", "Average Price (€)"},
	"lastLoad":    {"Ultimo Carico", "Last Load"},
	"products":    {"Prodotti", "Products"},
	"suppliers":   {"Fornitori", "Suppliers"},
}
