package scanning

import "errors"

// ErrBadResponseShape is returned when the provider answered but the
// response did not contain the expected text content. Callers substitute
// their own fallback text; extractors never return sentinel strings.
var ErrBadResponseShape = errors.New("response missing text content")

// Extractor defines the interface for turning a receipt photo into
// line-oriented "item, price" text.
type Extractor interface {
	// ExtractItems sends the image to the provider and returns the raw
	// extracted text.
	ExtractItems(imageData []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}
