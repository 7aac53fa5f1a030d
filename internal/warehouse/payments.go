package warehouse

import (
	"context"
	"fmt"

	"stockledger/internal/logger"
	"stockledger/internal/payment"
	"stockledger/pkg/models"
)

// reviewInvoice looks up a review invoice. Callers must hold mu.
func (s *Service) reviewInvoice(id string) (models.Document, error) {
	doc, ok := s.state.Find(id)
	if !ok {
		return models.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if doc.Type != models.TypeReviewInvoice {
		return models.Document{}, fmt.Errorf("%w: %s is a %s", ErrWrongType, id, doc.Type)
	}
	return doc, nil
}

// SetPaymentStatus applies a direct status selection to a review invoice.
func (s *Service) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (models.Document, error) {
	const op = "SetPaymentStatus"

	if _, ok := models.ParsePaymentStatus(string(status)); !ok {
		return models.Document{}, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.reviewInvoice(id)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	doc = payment.SetStatus(doc, status)
	if err := s.update(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	log := logger.WithDocument("warehouse", id)
	log.Info().
		Str("payment_status", string(status)).
		Float64("paid_amount", doc.PaidAmount).
		Msg("Payment status updated")
	return doc, nil
}

// AddInstallment records a partial payment on a review invoice. Amounts that
// are not positive leave the document unchanged.
func (s *Service) AddInstallment(ctx context.Context, id string, amount float64) (models.Document, error) {
	const op = "AddInstallment"

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.reviewInvoice(id)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	doc, applied := payment.AddInstallment(doc, amount)
	if !applied {
		s.log.Debug().Str("document_id", id).Float64("amount", amount).Msg("Installment ignored")
		return doc, nil
	}
	if err := s.update(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	log := logger.WithDocument("warehouse", id)
	log.Info().
		Float64("amount", amount).
		Float64("remaining", payment.Remaining(doc)).
		Str("payment_status", string(doc.PaymentStatus)).
		Msg("Installment recorded")
	return doc, nil
}

// PaymentStats aggregates the balances of the review invoices matching f.
func (s *Service) PaymentStats(f payment.Filter) payment.Stats {
	return payment.ComputeStats(f.Apply(s.Documents(models.TypeReviewInvoice)))
}

// BrowseQuery selects, orders and groups review invoices.
type BrowseQuery struct {
	Filter  payment.Filter
	SortBy  payment.SortField
	Order   payment.Order
	GroupBy payment.GroupBy
}

// BrowsePayments returns the review invoices matching q, sorted and grouped.
func (s *Service) BrowsePayments(q BrowseQuery) []payment.DocGroup {
	docs := q.Filter.Apply(s.Documents(models.TypeReviewInvoice))
	payment.Sort(docs, q.SortBy, q.Order)
	return payment.Group(docs, q.GroupBy, s.lang, s.now())
}
