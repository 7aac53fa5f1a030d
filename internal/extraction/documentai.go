package extraction

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"stockledger/internal/logger"
	"stockledger/internal/normalize"
)

var (
	documentAIMimeTypes = map[string]bool{
		"application/pdf": true,
		"image/tiff":      true,
		"image/gif":       true,
		"image/jpeg":      true,
		"image/png":       true,
		"image/bmp":       true,
		"image/webp":      true,
	}

	creditNotePattern = regexp.MustCompile(`(?i)nota\s+(di\s+)?credito|credit\s+note|abbuono`)
)

// DocumentAIExtractor runs the Document AI invoice parser and maps its
// entities onto raw records. It always yields a single document per file.
type DocumentAIExtractor struct {
	client        *documentai.DocumentProcessorClient
	processorName string
	log           zerolog.Logger
}

// NewDocumentAIExtractor creates the extractor with credentials from the environment
// (GOOGLE_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS).
func NewDocumentAIExtractor(ctx context.Context, cfg Config) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if cfg.ProjectID == "" || cfg.ProcessorID == "" {
		return nil, WrapExtractionError(op, BackendDocumentAI, ErrInvalidConfiguration, "project and processor id are required")
	}

	location := cfg.Location
	if location == "" {
		location = "us"
	}

	var clientOptions []option.ClientOption
	if location != "us" {
		clientOptions = append(clientOptions, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location)))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapExtractionError(op, BackendDocumentAI, err, fmt.Sprintf("failed to create Document AI client for location: %s", location))
	}

	return &DocumentAIExtractor{
		client:        client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, location, cfg.ProcessorID),
		log:           logger.WithComponent("document-ai"),
	}, nil
}

// Extract implements Extractor.
func (p *DocumentAIExtractor) Extract(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error) {
	const op = "Extract"

	if !documentAIMimeTypes[mimeType] {
		return nil, WrapExtractionError(op, BackendDocumentAI, ErrUnsupportedFormat, mimeType)
	}

	req := &documentaipb.ProcessRequest{
		Name: p.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := p.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, classifyBackendError(op, BackendDocumentAI, err)
	}
	if resp.Document == nil {
		return nil, WrapExtractionError(op, BackendDocumentAI, ErrEmpty, "no document in response")
	}

	doc := p.rawFromDocument(resp.Document)

	p.log.Info().
		Str("document_number", doc.DocumentNumber.String()).
		Str("supplier", doc.Supplier.String()).
		Int("products", len(doc.Products)).
		Msg("Document AI extraction completed")

	return []RawDocument{doc}, nil
}

// rawFromDocument converts invoice parser entities to a raw record.
func (p *DocumentAIExtractor) rawFromDocument(doc *documentaipb.Document) RawDocument {
	var raw RawDocument

	for _, entity := range doc.Entities {
		value := strings.TrimSpace(entity.MentionText)

		p.log.Debug().
			Str("entity_type", entity.Type).
			Str("value", value).
			Float32("confidence", entity.Confidence).
			Msg("Processing Document AI entity")

		switch entity.Type {
		case "invoice_id", "invoice_number", "delivery_note_id":
			raw.DocumentNumber = Text(value)
		case "supplier_name", "vendor_name":
			raw.Supplier = Text(value)
		case "invoice_date", "delivery_date":
			if raw.Date == "" || entity.Type == "invoice_date" {
				raw.Date = Text(entityDate(entity))
			}
		case "due_date":
			raw.DueDate = Text(entityDate(entity))
		case "total_amount", "gross_amount":
			raw.TotalAmount = Number(entityMoney(entity))
		case "line_item":
			raw.Products = append(raw.Products, lineItem(entity))
		}
	}

	if creditNotePattern.MatchString(doc.Text) {
		raw.IsCreditNote = true
	}
	return raw
}

// lineItem maps line_item/* properties onto a product.
func lineItem(entity *documentaipb.Document_Entity) RawProduct {
	var p RawProduct
	for _, prop := range entity.Properties {
		value := strings.TrimSpace(prop.MentionText)
		switch strings.TrimPrefix(prop.Type, "line_item/") {
		case "description":
			p.Name = Text(value)
		case "product_code":
			p.Code = Text(value)
		case "quantity":
			p.Quantity = Quantity(normalize.ParseQuantity(value))
		case "unit":
			p.Unit = Text(value)
		case "unit_price":
			p.UnitPrice = Number(entityMoney(prop))
		case "amount":
			p.TotalPrice = Number(entityMoney(prop))
		}
	}
	if p.Name == "" {
		p.Name = Text(strings.TrimSpace(entity.MentionText))
	}
	return p
}

// entityDate prefers the normalized date value and falls back to the mention text.
func entityDate(entity *documentaipb.Document_Entity) string {
	if nv := entity.GetNormalizedValue(); nv != nil {
		if d := nv.GetDateValue(); d != nil && d.Year > 0 {
			return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
		}
	}
	return strings.TrimSpace(entity.MentionText)
}

// entityMoney prefers the normalized money value and falls back to parsing the mention text.
func entityMoney(entity *documentaipb.Document_Entity) float64 {
	if nv := entity.GetNormalizedValue(); nv != nil {
		if m := nv.GetMoneyValue(); m != nil {
			return normalize.RoundTo(float64(m.Units)+float64(m.Nanos)/1e9, 4)
		}
	}
	return normalize.ParseAmount(entity.MentionText)
}

// Close closes the underlying Document AI client.
func (p *DocumentAIExtractor) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
