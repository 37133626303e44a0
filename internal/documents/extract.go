// Package documents turns uploaded study material into plain text and
// splits it into retrieval chunks.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// PDFTranscriber converts a PDF into markdown text.
type PDFTranscriber interface {
	TranscribePDF(ctx context.Context, name string, data []byte) (string, error)
}

// Document is extracted text plus where it came from.
type Document struct {
	Name string
	Text string
}

// Extractor dispatches on file extension.
type Extractor struct {
	pdf PDFTranscriber
}

// NewExtractor returns an extractor that sends PDFs to pdf.
func NewExtractor(pdf PDFTranscriber) *Extractor {
	return &Extractor{pdf: pdf}
}

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".txt", ".md":
		return true
	}
	return false
}

// Extract returns the text content of an uploaded file.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, fmt.Errorf("file %s is empty", name)
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = e.pdf.TranscribePDF(ctx, name, data)
	case ".docx":
		text, err = DocxText(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return Document{}, fmt.Errorf("file %s is not valid UTF-8", name)
		}
		text = string(data)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to extract %s: %w", name, err)
	}
	return Document{Name: name, Text: strings.TrimSpace(text)}, nil
}
