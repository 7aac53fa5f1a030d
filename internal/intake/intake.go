// Package intake coerces raw extraction records and spreadsheet rows into
// documents with every default filled in.
package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockledger/internal/extraction"
	"stockledger/internal/identity"
	"stockledger/internal/normalize"
	"stockledger/internal/spreadsheet"
	"stockledger/pkg/models"
)

// Defaults for purchase documents (invoices and delivery notes).
const (
	DefaultProductName = "Prodotto"
	DefaultCategory    = "Altro"
	DefaultSupplier    = "Sconosciuto"
)

// Defaults for review invoices.
const (
	DefaultReviewProductName = "Prodotto/Servizio"
	DefaultReviewCategory    = "Generico"
	DefaultReviewNumber      = "N/D"
	DefaultReviewSupplier    = "Fornitore Generico"
)

// Defaults for physical counts.
const (
	DefaultCountSupplier    = "Inventario Fisico"
	DefaultCountProductName = "Product"
)

// Builder creates documents. Clock and ids are injectable for tests.
type Builder struct {
	Now   func() time.Time
	NewID func(prefix string) string
}

// NewBuilder returns a Builder using the wall clock and random ids.
func NewBuilder() *Builder {
	return &Builder{
		Now:   time.Now,
		NewID: NewID,
	}
}

// NewID returns <prefix>-<first 8 chars of a random UUID>.
func NewID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func (b *Builder) today() string {
	return b.Now().Format(normalize.ISODate)
}

// Document converts one extracted record into a document of the given type.
// Physical counts go through Count instead.
func (b *Builder) Document(raw extraction.RawDocument, docType models.DocumentType, fileName string) (models.Document, error) {
	const op = "Document"

	switch docType {
	case models.TypeInvoice, models.TypeDeliveryNote:
		return b.purchase(raw, docType, fileName), nil
	case models.TypeReviewInvoice:
		return b.review(raw, fileName), nil
	default:
		return models.Document{}, fmt.Errorf("%s: unsupported document type %q", op, docType)
	}
}

func (b *Builder) purchase(raw extraction.RawDocument, docType models.DocumentType, fileName string) models.Document {
	id := b.NewID(docType.IDPrefix())

	doc := models.Document{
		ID:             id,
		DocumentNumber: raw.DocumentNumber.Or(fmt.Sprintf("DOC-%d", b.Now().UnixMilli())),
		Type:           docType,
		Date:           raw.Date.Or(b.today()),
		DueDate:        raw.DueDate.String(),
		Supplier:       raw.Supplier.Or(DefaultSupplier),
		FileName:       fileName,
		Status:         models.StatusProcessed,
		IsCreditNote:   bool(raw.IsCreditNote),
	}

	doc.ExtractedProducts = make([]models.Product, 0, len(raw.Products))
	sum := 0.0
	for i, p := range raw.Products {
		qty := p.Quantity.Float()
		unitPrice := p.UnitPrice.Float()
		total := p.TotalPrice.Float()
		if total == 0 {
			total = qty * unitPrice
		}
		sum += total

		doc.ExtractedProducts = append(doc.ExtractedProducts, models.Product{
			ID:            fmt.Sprintf("%s-%d", id, i),
			SKU:           p.Code.String(),
			Name:          p.Name.Or(DefaultProductName),
			Quantity:      qty,
			UnitOfMeasure: strings.ToUpper(p.Unit.Or(models.UnitPieces)),
			UnitPrice:     unitPrice,
			TotalPrice:    total,
			Category:      p.Category.Or(DefaultCategory),
			InvoiceDate:   doc.Date,
			InvoiceID:     id,
			InvoiceNumber: doc.DocumentNumber,
			Supplier:      doc.Supplier,
		})
	}

	doc.TotalAmount = raw.TotalAmount.Float()
	if doc.TotalAmount == 0 {
		doc.TotalAmount = normalize.RoundTo(sum, 2)
	}
	return doc
}

func (b *Builder) review(raw extraction.RawDocument, fileName string) models.Document {
	id := b.NewID(models.TypeReviewInvoice.IDPrefix())

	doc := models.Document{
		ID:             id,
		DocumentNumber: raw.DocumentNumber.Or(DefaultReviewNumber),
		Type:           models.TypeReviewInvoice,
		Date:           raw.Date.Or(b.today()),
		DueDate:        raw.DueDate.String(),
		Supplier:       raw.Supplier.Or(DefaultReviewSupplier),
		FileName:       fileName,
		PaidAmount:     0,
		Status:         models.StatusProcessed,
		PaymentStatus:  models.PaymentUnpaid,
		IsCreditNote:   bool(raw.IsCreditNote),
	}

	doc.ExtractedProducts = make([]models.Product, 0, len(raw.Products))
	sum := 0.0
	for i, p := range raw.Products {
		unitPrice := p.UnitPrice.Float()
		// The fallback total uses the extracted quantity, not the default of 1.
		total := p.TotalPrice.Float()
		if total == 0 {
			total = p.Quantity.Float() * unitPrice
		}
		sum += total

		qty := p.Quantity.Float()
		if qty == 0 {
			qty = 1
		}
		doc.ExtractedProducts = append(doc.ExtractedProducts, models.Product{
			ID:            fmt.Sprintf("%s-P%d", id, i),
			SKU:           p.Code.String(),
			Name:          p.Name.Or(DefaultReviewProductName),
			Quantity:      qty,
			UnitOfMeasure: strings.ToUpper(p.Unit.Or(models.UnitPieces)),
			UnitPrice:     unitPrice,
			TotalPrice:    total,
			Category:      p.Category.Or(DefaultReviewCategory),
			InvoiceDate:   doc.Date,
			InvoiceID:     id,
			InvoiceNumber: doc.DocumentNumber,
			Supplier:      doc.Supplier,
		})
	}

	doc.TotalAmount = raw.TotalAmount.Float()
	if doc.TotalAmount == 0 {
		doc.TotalAmount = normalize.RoundTo(sum, 2)
	}
	return doc
}

// countHeader builds the document fields shared by both count paths.
func (b *Builder) countHeader(raw extraction.RawDocument) spreadsheet.CountHeader {
	now := b.Now()
	stamp := fmt.Sprintf("%d", now.UnixMilli())
	if len(stamp) > 6 {
		stamp = stamp[len(stamp)-6:]
	}
	return spreadsheet.CountHeader{
		DocumentID:     b.NewID(models.TypePhysicalCount.IDPrefix()),
		DocumentNumber: raw.DocumentNumber.Or("INV-" + stamp),
		Date:           raw.Date.Or(now.Format(normalize.ISODate)),
		Supplier:       raw.Supplier.Or(DefaultCountSupplier),
	}
}

func countDocument(hdr spreadsheet.CountHeader, fileName string, products []models.Product) models.Document {
	total := 0.0
	for _, p := range products {
		total += p.TotalPrice
	}
	return models.Document{
		ID:                hdr.DocumentID,
		DocumentNumber:    hdr.DocumentNumber,
		Type:              models.TypePhysicalCount,
		Date:              hdr.Date,
		Supplier:          hdr.Supplier,
		FileName:          fileName,
		TotalAmount:       normalize.RoundTo(total, 2),
		Status:            models.StatusProcessed,
		ExtractedProducts: products,
	}
}

// CountFromRows builds a physical count from spreadsheet rows dated today.
func (b *Builder) CountFromRows(rows []spreadsheet.Row, resolver *identity.Resolver, fileName string) (models.Document, error) {
	const op = "CountFromRows"

	hdr := b.countHeader(extraction.RawDocument{})
	products := spreadsheet.CountProducts(rows, resolver, hdr)
	if len(products) == 0 {
		return models.Document{}, fmt.Errorf("%s: no valid products found in %s", op, fileName)
	}
	return countDocument(hdr, fileName, products), nil
}

// CountFromRaw builds a physical count from the first extracted record.
// Prices and categories prefer the matched ledger entry.
func (b *Builder) CountFromRaw(docs []extraction.RawDocument, resolver *identity.Resolver, fileName string) (models.Document, error) {
	const op = "CountFromRaw"

	if len(docs) == 0 {
		return models.Document{}, fmt.Errorf("%s: %w", op, extraction.ErrEmpty)
	}
	raw := docs[0]
	hdr := b.countHeader(raw)

	products := make([]models.Product, 0, len(raw.Products))
	for i, p := range raw.Products {
		name := p.Name.Or(DefaultCountProductName)
		sku := p.Code.String()
		unit := normalize.NormalizeUnit(p.Unit.String())
		qty := normalize.Round4(p.Quantity.Float())

		unitPrice := p.UnitPrice.Float()
		category := p.Category.String()
		if sys, ok := resolver.Lookup(name, sku, unit); ok {
			unitPrice = sys.UnitPrice
			if category == "" {
				category = sys.Category
			}
		}
		if category == "" {
			category = spreadsheet.DefaultCountCategory
		}

		products = append(products, models.Product{
			ID:            fmt.Sprintf("%s-%d", hdr.DocumentID, i),
			SKU:           sku,
			Name:          name,
			Quantity:      qty,
			UnitOfMeasure: unit,
			UnitPrice:     unitPrice,
			TotalPrice:    normalize.Round4(qty * unitPrice),
			Category:      category,
			InvoiceDate:   hdr.Date,
			InvoiceID:     hdr.DocumentID,
			InvoiceNumber: hdr.DocumentNumber,
			Supplier:      hdr.Supplier,
		})
	}

	if len(products) == 0 {
		return models.Document{}, fmt.Errorf("%s: no products found in %s: %w", op, fileName, extraction.ErrEmpty)
	}
	return countDocument(hdr, fileName, products), nil
}
