package extraction

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"stockledger/internal/logger"
)

// DefaultGeminiModel is used when GEMINI_MODEL is unset.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiExtractor sends the file inline to a Gemini model and asks for JSON
// matching documentSchema.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    zerolog.Logger
}

// NewGeminiExtractor creates a Gemini backed extractor.
func NewGeminiExtractor(ctx context.Context, cfg Config) (*GeminiExtractor, error) {
	const op = "NewGeminiExtractor"

	if cfg.GeminiAPIKey == "" {
		return nil, WrapExtractionError(op, BackendGemini, ErrInvalidConfiguration, "GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, WrapExtractionError(op, BackendGemini, err, "failed to create genai client")
	}

	modelName := cfg.GeminiModel
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = documentSchema()
	model.SetTemperature(0)
	model.SetTopP(1)

	return &GeminiExtractor{
		client: client,
		model:  model,
		log:    logger.WithComponent("gemini"),
	}, nil
}

// Extract implements Extractor.
func (g *GeminiExtractor) Extract(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error) {
	const op = "Extract"

	g.log.Debug().
		Int("bytes", len(content)).
		Str("mime_type", mimeType).
		Msg("Sending document to Gemini")

	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: content},
		genai.Text(userPrompt),
	)
	if err != nil {
		return nil, classifyBackendError(op, BackendGemini, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, WrapExtractionError(op, BackendGemini, ErrEmpty, "empty response from gemini")
	}

	docs, err := ParseResponse(text)
	if err != nil {
		return nil, WrapExtractionError(op, BackendGemini, err, "")
	}
	return docs, nil
}

// Close closes the client connection.
func (g *GeminiExtractor) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

// documentSchema mirrors RawDocument.
func documentSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	num := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}

	product := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"code":       str(""),
			"name":       str(""),
			"quantity":   num(""),
			"unit":       str("Only 'UD' for units/pieces, 'KG' for weight, 'CJ' for cases/packs."),
			"unitPrice":  num(""),
			"totalPrice": num(""),
			"category":   str("Only 'Frutta' or 'Verdura'. Map 'Vegetables' to 'Verdura'."),
		},
		Required: []string{"name", "quantity", "unit"},
	}

	document := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"supplier":       str(""),
			"documentNumber": str(""),
			"date":           str("YYYY-MM-DD"),
			"dueDate":        str("YYYY-MM-DD"),
			"isCreditNote":   {Type: genai.TypeBoolean},
			"totalAmount":    num("Final document total including taxes and charges"),
			"products":       {Type: genai.TypeArray, Items: product},
		},
		Required: []string{"supplier", "documentNumber", "date", "products", "isCreditNote", "totalAmount"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"documents": {Type: genai.TypeArray, Items: document},
		},
		Required: []string{"documents"},
	}
}
