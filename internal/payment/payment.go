// Package payment tracks installments against review invoices and derives
// payment status, aggregate balances and the browsing views over them.
package payment

import (
	"math"

	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// SetStatus applies a direct status selection and returns the updated copy.
// Paid settles the full amount, unpaid clears it and partial keeps whatever
// has been paid so far.
func SetStatus(doc models.Document, status models.PaymentStatus) models.Document {
	out := doc.Clone()
	out.PaymentStatus = status

	switch status {
	case models.PaymentPaid:
		out.PaidAmount = out.TotalAmount
	case models.PaymentUnpaid:
		out.PaidAmount = 0
	}
	return out
}

// AddInstallment records a payment of amount. The paid amount is clamped to
// the document total. Amounts that are not positive finite numbers are
// ignored and applied is false.
func AddInstallment(doc models.Document, amount float64) (out models.Document, applied bool) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return doc, false
	}

	out = doc.Clone()
	paid := math.Min(out.TotalAmount, normalize.RoundTo(out.PaidAmount+amount, 2))
	out.PaidAmount = paid

	if paid >= out.TotalAmount {
		out.PaymentStatus = models.PaymentPaid
	} else {
		out.PaymentStatus = models.PaymentPartial
	}
	return out, true
}

// Remaining returns what is still owed on doc.
func Remaining(doc models.Document) float64 {
	return doc.TotalAmount - paidValue(doc)
}

// paidValue is the amount considered settled for the current status.
func paidValue(doc models.Document) float64 {
	switch doc.PaymentStatus {
	case models.PaymentPaid:
		return doc.TotalAmount
	case models.PaymentPartial:
		return doc.PaidAmount
	default:
		return 0
	}
}

// Stats splits balances by polarity. Paid and Unpaid cover regular invoices,
// ReceivedCredits and PendingCredits cover credit notes.
type Stats struct {
	Paid            float64 `json:"paid"`
	Unpaid          float64 `json:"unpaid"`
	ReceivedCredits float64 `json:"receivedCredits"`
	PendingCredits  float64 `json:"pendingCredits"`
	PartialResidue  float64 `json:"partialResidue"`
}

// ComputeStats aggregates balances over docs.
func ComputeStats(docs []models.Document) Stats {
	var s Stats
	for _, doc := range docs {
		paid := paidValue(doc)
		remaining := doc.TotalAmount - paid

		if doc.PaymentStatus == models.PaymentPartial {
			s.PartialResidue += remaining
		}

		if doc.IsCreditNote {
			s.ReceivedCredits += paid
			s.PendingCredits += remaining
		} else {
			s.Paid += paid
			s.Unpaid += remaining
		}
	}

	s.Paid = normalize.RoundTo(s.Paid, 2)
	s.Unpaid = normalize.RoundTo(s.Unpaid, 2)
	s.ReceivedCredits = normalize.RoundTo(s.ReceivedCredits, 2)
	s.PendingCredits = normalize.RoundTo(s.PendingCredits, 2)
	s.PartialResidue = normalize.RoundTo(s.PartialResidue, 2)
	return s
}
