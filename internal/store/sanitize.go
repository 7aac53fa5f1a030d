package store

import (
	"math"
	"time"

	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// Defaults applied to records replicated to the remote store.
const (
	RemoteDefaultNumber      = "N/D"
	RemoteDefaultSupplier    = "Fornitore Sconosciuto"
	RemoteDefaultProductName = "Prodotto"
	RemoteDefaultCategory    = "Generico"
)

// Sanitize fills every field the remote schema requires and copies the
// document fields onto its products. doc is not modified.
func Sanitize(doc models.Document, now time.Time) models.Document {
	out := doc.Clone()

	if out.DocumentNumber == "" {
		out.DocumentNumber = RemoteDefaultNumber
	}
	if out.Date == "" {
		out.Date = now.Format(normalize.ISODate)
	}
	if out.DueDate == "" {
		out.DueDate = out.Date
	}
	if out.Supplier == "" {
		out.Supplier = RemoteDefaultSupplier
	}
	if out.PaymentStatus == "" {
		out.PaymentStatus = models.PaymentUnpaid
	}
	out.TotalAmount = finiteOrZero(out.TotalAmount)
	out.PaidAmount = finiteOrZero(out.PaidAmount)

	for i := range out.ExtractedProducts {
		p := &out.ExtractedProducts[i]
		if p.Name == "" {
			p.Name = RemoteDefaultProductName
		}
		if p.UnitOfMeasure == "" {
			p.UnitOfMeasure = models.UnitPieces
		}
		if p.Category == "" {
			p.Category = RemoteDefaultCategory
		}
		p.Quantity = finiteOrZero(p.Quantity)
		p.UnitPrice = finiteOrZero(p.UnitPrice)
		p.TotalPrice = finiteOrZero(p.TotalPrice)
		p.InvoiceDate = out.Date
		p.InvoiceID = out.ID
		p.InvoiceNumber = out.DocumentNumber
		p.Supplier = out.Supplier
	}
	return out
}

// FillFetched completes a document read back from the remote store.
func FillFetched(doc models.Document) models.Document {
	if doc.DueDate == "" {
		doc.DueDate = doc.Date
	}
	doc.Status = models.StatusProcessed
	if doc.PaymentStatus == "" {
		doc.PaymentStatus = models.PaymentUnpaid
	}
	if doc.ExtractedProducts == nil {
		doc.ExtractedProducts = []models.Product{}
	}
	return doc
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
