package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Extractor turns an uploaded document payload into ordered pages. Layout
// analysis and OCR happen upstream; implementations only deliver what that
// step produced.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) ([]Page, error)
}

// JSONExtractor decodes the page dump emitted by the PDF extraction sidecar:
// a JSON object with a "pages" array matching the Page model.
type JSONExtractor struct{}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

type pageDump struct {
	Pages []Page `json:"pages"`
}

// Extract implements the Extractor interface.
func (e *JSONExtractor) Extract(ctx context.Context, r io.Reader) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dump pageDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode page dump: %w", err)
	}

	return dump.Pages, nil
}

var _ Extractor = (*JSONExtractor)(nil)
