package extraction

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"stockledger/internal/logger"
	"stockledger/internal/ocr"
)

// maxPromptChars caps the OCR text sent to the chat model.
const maxPromptChars = 60000

// OpenAIExtractor reads the document text with OCR and asks a chat model to
// structure it.
type OpenAIExtractor struct {
	ocr    ocr.TextExtractor
	closer func() error
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIExtractor creates the extractor with a Google Vision OCR client.
func NewOpenAIExtractor(ctx context.Context, cfg Config) (*OpenAIExtractor, error) {
	const op = "NewOpenAIExtractor"

	if cfg.OpenAIAPIKey == "" {
		return nil, WrapExtractionError(op, BackendOpenAI, ErrInvalidConfiguration, "OPENAI_API_KEY is required")
	}

	vision, err := ocr.NewGoogleVisionService(ctx)
	if err != nil {
		return nil, WrapExtractionError(op, BackendOpenAI, err, "failed to create OCR service")
	}

	e := NewOpenAIExtractorWithDeps(vision, openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	e.closer = vision.Close
	return e, nil
}

// NewOpenAIExtractorWithDeps creates the extractor with explicit dependencies.
func NewOpenAIExtractorWithDeps(textExtractor ocr.TextExtractor, client *openai.Client, model string) *OpenAIExtractor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{
		ocr:    textExtractor,
		client: client,
		model:  model,
		log:    logger.WithComponent("openai-extraction"),
	}
}

// Extract implements Extractor.
func (e *OpenAIExtractor) Extract(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error) {
	const op = "Extract"

	if !ocr.Supported(mimeType) {
		return nil, WrapExtractionError(op, BackendOpenAI, ErrUnsupportedFormat, mimeType)
	}

	text, err := e.ocr.ExtractText(ctx, content, mimeType)
	if err != nil {
		return nil, classifyBackendError(op, BackendOpenAI, err)
	}

	e.log.Debug().
		Int("chars", len(text.Text)).
		Int("pages", text.PageCount).
		Msg("OCR text ready, requesting structured extraction")

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(text.Text)},
		},
	})
	if err != nil {
		return nil, classifyBackendError(op, BackendOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return nil, WrapExtractionError(op, BackendOpenAI, ErrEmpty, "no choices in completion")
	}

	docs, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, WrapExtractionError(op, BackendOpenAI, err, "")
	}
	return docs, nil
}

func buildUserMessage(text string) string {
	return fmt.Sprintf("%s\nRespond with an object shaped like:\n%s\n\nDOCUMENT TEXT:\n%s", userPrompt, jsonShape, truncateText(text, maxPromptChars))
}

// truncateText cuts text to at most max bytes without splitting a rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Close releases the OCR client.
func (e *OpenAIExtractor) Close() error {
	if e.closer != nil {
		return e.closer()
	}
	return nil
}
