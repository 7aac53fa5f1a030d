// Package ocr extracts plain text from documents with Google Cloud Vision.
//
// PDF and TIFF files go through file annotation (up to 5 pages inline);
// JPEG, PNG, GIF, BMP and WEBP images go through image annotation. Both use
// DOCUMENT_TEXT_DETECTION.
//
// Credentials come from GOOGLE_CREDENTIALS (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (file path), falling back to application
// default credentials.
package ocr

import (
	"context"
	"time"
)

// TextExtractor returns the text content of a document.
type TextExtractor interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (*Result, error)
}

// Result contains the recognized text with metadata.
type Result struct {
	// Text is the content of all pages in reading order.
	Text string `json:"text"`

	PageCount int `json:"page_count"`

	// Confidence is the average page confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	LanguageCodes []string `json:"language_codes,omitempty"`

	ProcessingDuration time.Duration `json:"processing_duration"`
}

// fileMimeTypes are sent through file annotation; everything else in
// imageMimeTypes through image annotation.
var (
	fileMimeTypes = map[string]bool{
		"application/pdf": true,
		"image/tiff":      true,
	}
	imageMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/bmp":  true,
		"image/webp": true,
	}
)

// Supported reports whether mimeType can be processed.
func Supported(mimeType string) bool {
	return fileMimeTypes[mimeType] || imageMimeTypes[mimeType]
}
