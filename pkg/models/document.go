package models

// DocumentType identifies the collection a document belongs to.
type DocumentType string

const (
	TypeInvoice       DocumentType = "invoice"
	TypeDeliveryNote  DocumentType = "deliveryNote"
	TypePhysicalCount DocumentType = "physicalCount"
	TypeReviewInvoice DocumentType = "reviewInvoice"
)

// AllTypes lists every document collection in load order.
var AllTypes = []DocumentType{TypeInvoice, TypeDeliveryNote, TypePhysicalCount, TypeReviewInvoice}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeInvoice, TypeDeliveryNote, TypePhysicalCount, TypeReviewInvoice:
		return true
	}
	return false
}

// IDPrefix returns the prefix used for generated document ids.
func (t DocumentType) IDPrefix() string {
	switch t {
	case TypeDeliveryNote:
		return "DDT"
	case TypePhysicalCount:
		return "PC"
	case TypeReviewInvoice:
		return "REV"
	default:
		return "INV"
	}
}

// Collection returns the storage collection name for the type.
func (t DocumentType) Collection() string {
	switch t {
	case TypeDeliveryNote:
		return "deliveryNotes"
	case TypePhysicalCount:
		return "physicalCounts"
	case TypeReviewInvoice:
		return "reviewInvoices"
	default:
		return "invoices"
	}
}

type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusProcessed DocumentStatus = "processed"
	StatusError     DocumentStatus = "error"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus maps free text to a payment status, defaulting to unpaid.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPaid, PaymentPartial, PaymentUnpaid:
		return PaymentStatus(s), true
	}
	return PaymentUnpaid, false
}

// Unit codes
const (
	UnitPieces = "UD"
	UnitWeight = "KG"
	UnitCase   = "CJ"
)

// Product is a single line item of a document.
// Quantity and TotalPrice carry the sign of the owning document.
type Product struct {
	ID            string  `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	Category      string  `json:"category"`

	// Denormalized from the owning document
	InvoiceDate   string `json:"invoiceDate"`
	InvoiceID     string `json:"invoiceId"`
	InvoiceNumber string `json:"invoiceNumber"`
	Supplier      string `json:"supplier"`
}

type Document struct {
	// Core identifiers
	ID             string       `json:"id"`
	DocumentNumber string       `json:"documentNumber"`
	Type           DocumentType `json:"type"`

	// Dates are ISO formatted (YYYY-MM-DD) so they order lexicographically
	Date    string `json:"date"`
	DueDate string `json:"dueDate,omitempty"`

	Supplier string `json:"supplier"`
	FileName string `json:"fileName"`

	// Amounts
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount,omitempty"`

	// Status
	Status        DocumentStatus `json:"status"`
	PaymentStatus PaymentStatus  `json:"paymentStatus,omitempty"`
	IsCreditNote  bool           `json:"isCreditNote,omitempty"`

	ExtractedProducts []Product `json:"extractedProducts"`
}

// EffectiveDueDate returns the due date, falling back to the issue date.
func (d *Document) EffectiveDueDate() string {
	if d.DueDate != "" {
		return d.DueDate
	}
	return d.Date
}

// Clone returns a deep copy so callers can modify documents without aliasing.
func (d Document) Clone() Document {
	products := make([]Product, len(d.ExtractedProducts))
	copy(products, d.ExtractedProducts)
	d.ExtractedProducts = products
	return d
}

// InventoryItem is a consolidated ledger entry derived from invoices and delivery notes.
// It is never persisted.
type InventoryItem struct {
	ID            string  `json:"id"` // INV-KEY-<product key>
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	Category      string  `json:"category"`
	LastDate      string  `json:"lastDate"`
	Supplier      string  `json:"supplier"`
	InvoiceNumber string  `json:"invoiceNumber"`
}
