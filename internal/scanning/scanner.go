package scanning

import (
	"context"

	"github.com/snapledger/receipt-pipeline/internal/parse"
)

// BoundingBox is the pixel-space rectangle of a recognized word, origin in
// the upper-left corner of the image.
type BoundingBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// WordToken is a single recognized word with its position and the index of
// the engine-detected line it belongs to.
type WordToken struct {
	Text      string      `json:"text"`
	Box       BoundingBox `json:"box"`
	LineIndex int         `json:"line_index"`
}

// RecognitionResult is the raw output of one recognition pass.
type RecognitionResult struct {
	RawText string
	// Lines groups word tokens by engine-detected text line, in reading order.
	Lines [][]WordToken
	// OverallConfidence is the mean word confidence, 0-100.
	OverallConfidence float64
}

// Recognition is what ProcessReceiptImage hands back to the caller: the
// column-aware reconstructed text plus the engine confidence.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer is the boundary to the external recognition engine. The engine
// instance behind it is not safe for concurrent use; implementations must
// serialize Recognize calls.
type Recognizer interface {
	// Initialize starts the engine. Idempotent; a concurrent caller waits
	// for the in-flight initialization instead of re-initializing.
	Initialize(ctx context.Context) error
	// Recognize submits an encoded image and returns the recognized text
	// structure. Initializes the engine if Initialize was never called.
	Recognize(ctx context.Context, image []byte) (*RecognitionResult, error)
	// Cleanup releases the engine and resets initialization state. No-op
	// when already idle.
	Cleanup() error
}

// Scanner defines the interface for receipt scanning operations.
type Scanner interface {
	// ScanReceipt runs the full extraction pipeline on a receipt image or
	// PDF and returns the parsed result.
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*parse.ParsedReceipt, error)
	// Close releases the scanner and its engine resources.
	Close() error
}
