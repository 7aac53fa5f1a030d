package payment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stockledger/internal/locale"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// Kind filters documents by polarity.
type Kind string

const (
	KindAll        Kind = "all"
	KindInvoice    Kind = "invoice"
	KindCreditNote Kind = "creditNote"
)

// Filter narrows the review list. Zero values match everything.
type Filter struct {
	Kind     Kind
	Supplier string
	// Status "unpaid" also matches partially paid documents.
	Status models.PaymentStatus
}

// Match reports whether doc passes the filter.
func (f Filter) Match(doc models.Document) bool {
	switch f.Kind {
	case KindInvoice:
		if doc.IsCreditNote {
			return false
		}
	case KindCreditNote:
		if !doc.IsCreditNote {
			return false
		}
	}

	if f.Supplier != "" && doc.Supplier != f.Supplier {
		return false
	}

	switch f.Status {
	case models.PaymentUnpaid:
		return doc.PaymentStatus != models.PaymentPaid
	case models.PaymentPaid, models.PaymentPartial:
		return doc.PaymentStatus == f.Status
	}
	return true
}

// Apply returns the documents matching f, preserving order.
func (f Filter) Apply(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// SortField selects the sort key.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByDueDate  SortField = "dueDate"
	SortBySupplier SortField = "supplier"
)

// Order is the sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// DefaultOrder is ascending for suppliers and newest first for dates.
func DefaultOrder(field SortField) Order {
	if field == SortBySupplier {
		return Ascending
	}
	return Descending
}

// ParseSort validates field and order names. An empty order picks the
// field's default.
func ParseSort(field, order string) (SortField, Order, error) {
	f := SortField(field)
	switch f {
	case "":
		f = SortByDate
	case SortByDate, SortByDueDate, SortBySupplier:
	default:
		return "", "", fmt.Errorf("unknown sort field %q (want date, dueDate or supplier)", field)
	}

	o := Order(strings.ToLower(order))
	switch o {
	case "":
		o = DefaultOrder(f)
	case Ascending, Descending:
	default:
		return "", "", fmt.Errorf("unknown sort order %q (want asc or desc)", order)
	}
	return f, o, nil
}

// Sort orders docs in place. Equal keys keep their relative order.
func Sort(docs []models.Document, field SortField, order Order) {
	key := func(d *models.Document) string {
		switch field {
		case SortByDueDate:
			return d.EffectiveDueDate()
		case SortBySupplier:
			return strings.ToLower(d.Supplier)
		default:
			return d.Date
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := key(&docs[i]), key(&docs[j])
		if order == Ascending {
			return a < b
		}
		return a > b
	})
}

// GroupBy selects how the review list is bucketed.
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupSupplier GroupBy = "supplier"
	GroupDay      GroupBy = "day"
	GroupWeek     GroupBy = "week"
	GroupMonth    GroupBy = "month"
	GroupYear     GroupBy = "year"
)

// ParseGroupBy validates a grouping name; empty means none.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(s)); g {
	case "":
		return GroupNone, nil
	case GroupNone, GroupSupplier, GroupDay, GroupWeek, GroupMonth, GroupYear:
		return g, nil
	}
	return "", fmt.Errorf("unknown grouping %q", s)
}

// DocGroup is a labelled bucket of documents.
type DocGroup struct {
	Label     string            `json:"label"`
	Documents []models.Document `json:"documents"`
}

// Group buckets docs in their current order. Time based groups use the
// document date; now decides which day is labelled as today.
func Group(docs []models.Document, by GroupBy, lang locale.Lang, now time.Time) []DocGroup {
	if by == GroupNone || by == "" {
		return []DocGroup{{Label: lang.Label("allDocs"), Documents: docs}}
	}

	var groups []DocGroup
	index := make(map[string]int)

	for _, d := range docs {
		label := groupLabel(d, by, lang, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DocGroup{Label: label})
		}
		groups[i].Documents = append(groups[i].Documents, d)
	}
	return groups
}

func groupLabel(d models.Document, by GroupBy, lang locale.Lang, now time.Time) string {
	if by == GroupSupplier {
		if d.Supplier == "" {
			return lang.Label("unknown")
		}
		return d.Supplier
	}

	t := normalize.ParseDate(d.Date)
	if t.IsZero() {
		return lang.Label("unknown")
	}

	switch by {
	case GroupDay:
		if t.Format(normalize.ISODate) == now.Format(normalize.ISODate) {
			return lang.Label("today")
		}
		return lang.DayMonthYear(t)
	case GroupWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%s %d - %d", lang.Label("week"), week, year)
	case GroupMonth:
		return normalize.Capitalize(lang.MonthYear(t))
	default:
		return fmt.Sprintf("%s %d", lang.Label("year"), t.Year())
	}
}
