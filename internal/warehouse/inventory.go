package warehouse

import (
	"bytes"
	"context"
	"fmt"

	"stockledger/internal/extraction"
	"stockledger/internal/identity"
	"stockledger/internal/ledger"
	"stockledger/internal/reconciliation"
	"stockledger/internal/spreadsheet"
	"stockledger/pkg/models"
	"stockledger/pkg/services"
)

// Inventory recomputes the ledger from the current documents.
func (s *Service) Inventory() []models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Aggregate(s.all())
}

// InventoryView filters the ledger by term and groups it.
func (s *Service) InventoryView(term string, by ledger.Grouping) []ledger.Group {
	return ledger.GroupItems(ledger.Search(s.Inventory(), term), by, s.lang)
}

// AvailableYears lists the years that have invoices or delivery notes.
func (s *Service) AvailableYears() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.AvailableYears(s.all())
}

// Dashboard returns the headline figures.
func (s *Service) Dashboard() ledger.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.all()
	return ledger.BuildDashboard(ledger.Aggregate(docs), docs)
}

// ExportInventory writes the ledger to w.
func (s *Service) ExportInventory(ctx context.Context, w services.TableWriter) error {
	const op = "ExportInventory"

	items := ledger.Search(s.Inventory(), "")
	if len(items) == 0 {
		return fmt.Errorf("%s: inventory is empty", op)
	}
	if err := w.WriteTable(ctx, ledger.InventoryTable(items, s.lang)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// resolver indexes the current ledger for count matching.
func (s *Service) resolver() *identity.Resolver {
	return identity.NewResolver(s.Inventory())
}

// ImportCount turns a count sheet (.xlsx/.xls) or a scanned count into a
// physical count document and adds it.
func (s *Service) ImportCount(ctx context.Context, f File) (models.Document, error) {
	const op = "ImportCount"

	var (
		doc models.Document
		err error
	)
	if extraction.IsSpreadsheet(f.Name) {
		rows, rerr := spreadsheet.ReadRows(bytes.NewReader(f.Content))
		if rerr != nil {
			return models.Document{}, fmt.Errorf("%s: %w", op, rerr)
		}
		doc, err = s.builder.CountFromRows(rows, s.resolver(), f.Name)
	} else {
		raws, xerr := s.extract(ctx, f)
		if xerr != nil {
			return models.Document{}, fmt.Errorf("%s: %w", op, xerr)
		}
		doc, err = s.builder.CountFromRaw(raws, s.resolver(), f.Name)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.AddDocument(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// ImportCountFromSheet reads a count from a Google Sheets tab and adds it.
func (s *Service) ImportCountFromSheet(ctx context.Context, reader *reconciliation.CountReader, sheetName string) (models.Document, error) {
	const op = "ImportCountFromSheet"

	rows, err := reader.ReadCountRows(ctx, sheetName)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := s.builder.CountFromRows(rows, s.resolver(), sheetName)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.AddDocument(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// Reconcile compares a physical count with the current ledger.
func (s *Service) Reconcile(id string) (reconciliation.Result, error) {
	const op = "Reconcile"

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.state.Find(id)
	if !ok {
		return reconciliation.Result{}, fmt.Errorf("%s: %w: %s", op, ErrNotFound, id)
	}
	if doc.Type != models.TypePhysicalCount {
		return reconciliation.Result{}, fmt.Errorf("%s: %w: %s is a %s", op, ErrWrongType, id, doc.Type)
	}
	return reconciliation.Reconcile(doc, ledger.Aggregate(s.all())), nil
}

// ExportReconciliation writes the report of one count to w.
func (s *Service) ExportReconciliation(ctx context.Context, id string, w services.TableWriter, onlyDiscrepancies bool) (reconciliation.Result, error) {
	const op = "ExportReconciliation"

	res, err := s.Reconcile(id)
	if err != nil {
		return reconciliation.Result{}, err
	}
	if err := w.WriteTable(ctx, reconciliation.Report(res, s.lang, onlyDiscrepancies)); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
