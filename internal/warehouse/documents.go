package warehouse

import (
	"context"
	"fmt"

	"stockledger/internal/extraction"
	"stockledger/internal/normalize"
	"stockledger/pkg/models"
)

// File is one uploaded document.
type File struct {
	Name    string
	Content []byte
}

// IngestFiles extracts and adds every file in order. Physical counts go
// through ImportCount. Processing stops at the first failure; documents from
// earlier files stay added and are returned together with the error.
func (s *Service) IngestFiles(ctx context.Context, docType models.DocumentType, files []File) ([]models.Document, error) {
	const op = "IngestFiles"

	if !docType.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrWrongType, docType)
	}

	var added []models.Document
	for i, f := range files {
		log := s.log.With().Str("file", f.Name).Int("index", i).Logger()
		log.Info().Str("type", string(docType)).Msg("Processing file")

		if docType == models.TypePhysicalCount {
			doc, err := s.ImportCount(ctx, f)
			if err != nil {
				return added, fmt.Errorf("%s: %s: %w", op, f.Name, err)
			}
			added = append(added, doc)
			continue
		}

		docs, err := s.ingestFile(ctx, docType, f)
		added = append(added, docs...)
		if err != nil {
			return added, fmt.Errorf("%s: %s: %w", op, f.Name, err)
		}
	}
	return added, nil
}

func (s *Service) ingestFile(ctx context.Context, docType models.DocumentType, f File) ([]models.Document, error) {
	raws, err := s.extract(ctx, f)
	if err != nil {
		return nil, err
	}

	var added []models.Document
	for _, raw := range raws {
		doc, err := s.builder.Document(raw, docType, f.Name)
		if err != nil {
			return added, err
		}
		if err := s.AddDocument(ctx, doc); err != nil {
			return added, err
		}
		added = append(added, doc)
	}
	return added, nil
}

func (s *Service) extract(ctx context.Context, f File) ([]extraction.RawDocument, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}
	return s.extractor.Extract(ctx, f.Content, extraction.DetectMIMEType(f.Name, f.Content))
}

// AddDocument prepends doc to its collection, saves it locally and
// replicates it.
func (s *Service) AddDocument(ctx context.Context, doc models.Document) error {
	const op = "AddDocument"

	if !doc.Type.Valid() {
		return fmt.Errorf("%s: %w: %q", op, ErrWrongType, doc.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, s.state.Add(doc), doc.Type); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.replicate(ctx, doc)

	s.log.Info().
		Str("document_id", doc.ID).
		Str("type", string(doc.Type)).
		Int("products", len(doc.ExtractedProducts)).
		Msg("Document added")
	return nil
}

// update replaces a document wholesale. Callers must hold mu.
func (s *Service) update(ctx context.Context, doc models.Document) error {
	next, ok := s.state.Replace(doc)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, doc.ID)
	}
	if err := s.commit(ctx, next, doc.Type); err != nil {
		return err
	}
	s.replicate(ctx, doc)
	return nil
}

// DeleteDocument removes a document locally and then remotely.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	const op = "DeleteDocument"

	s.mu.Lock()
	defer s.mu.Unlock()

	next, removed, ok := s.state.Remove(id)
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, id)
	}
	if err := s.commit(ctx, next, removed.Type); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.replicateDelete(ctx, id)

	s.log.Info().Str("document_id", id).Msg("Document deleted")
	return nil
}

// EditSupplier renames the supplier of a document and of its products.
func (s *Service) EditSupplier(ctx context.Context, id, supplier string) (models.Document, error) {
	const op = "EditSupplier"

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.state.Find(id)
	if !ok {
		return models.Document{}, fmt.Errorf("%s: %w: %s", op, ErrNotFound, id)
	}

	doc = doc.Clone()
	doc.Supplier = supplier
	for i := range doc.ExtractedProducts {
		doc.ExtractedProducts[i].Supplier = supplier
	}

	if err := s.update(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// ResetWarehouse deletes invoices and delivery notes, all of them or only
// those dated in year. Physical counts and review invoices are kept. It
// returns the number of deleted documents.
func (s *Service) ResetWarehouse(ctx context.Context, year *int) (int, error) {
	const op = "ResetWarehouse"

	match := func(models.Document) bool { return true }
	if year != nil {
		y := *year
		match = func(d models.Document) bool { return normalize.Year(d.Date) == y }
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	var removed []models.Document
	for _, t := range []models.DocumentType{models.TypeInvoice, models.TypeDeliveryNote} {
		var gone []models.Document
		next, gone = next.RemoveWhere(t, match)
		removed = append(removed, gone...)
	}
	if len(removed) == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, next, models.TypeInvoice, models.TypeDeliveryNote); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, d := range removed {
		s.replicateDelete(ctx, d.ID)
	}

	ev := s.log.Info().Int("deleted", len(removed))
	if year != nil {
		ev = ev.Int("year", *year)
	}
	ev.Msg("Warehouse reset")
	return len(removed), nil
}
