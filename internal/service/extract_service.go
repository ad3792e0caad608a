package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ErrExtraction marks any failure to turn an uploaded PDF into usable text:
// unreadable file, not actually a PDF, or no extractable text. The ingestion
// worker stores the wrapped message as the record's processing error.
var ErrExtraction = errors.New("text extraction failed")

// TextExtractor pulls plain text out of an uploaded PDF. A single attempt, no
// retries; every failure is an ErrExtraction.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractText parses the PDF bytes and returns their plain text with
// whitespace collapsed. Empty or whitespace-only text is a failure, not an
// empty success.
func (e *TextExtractor) ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrExtraction)
	}
	if !isPDF(data) {
		return "", fmt.Errorf("%w: missing %%PDF header", ErrExtraction)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text := collapseWhitespace(string(b))
	if text == "" {
		return "", fmt.Errorf("%w: document contains no extractable text", ErrExtraction)
	}
	return text, nil
}

// isPDF checks the "%PDF-" magic bytes.
func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
