package scanning

import (
	"context"
	"log/slog"

	"github.com/snapledger/receipt-pipeline/internal/parse"
)

// Pipeline runs the receipt extraction stages in sequence: preprocess the
// bitmap, recognize it, rebuild columnar text from word positions, parse.
// Preprocessing and parsing are pure and safe to run concurrently across
// receipts; the recognizer serializes engine access internally.
type Pipeline struct {
	recognizer Recognizer
}

// NewPipeline wires a pipeline around the given recognizer.
func NewPipeline(recognizer Recognizer) *Pipeline {
	return &Pipeline{recognizer: recognizer}
}

// Initialize eagerly starts the recognition engine. Optional; the first
// recognition initializes lazily.
func (p *Pipeline) Initialize(ctx context.Context) error {
	return p.recognizer.Initialize(ctx)
}

// ProcessReceiptImage preprocesses and recognizes a receipt, returning the
// reconstructed text and the engine confidence.
func (p *Pipeline) ProcessReceiptImage(ctx context.Context, imageData []byte, contentType string) (*Recognition, error) {
	preprocessed, err := Preprocess(imageData, contentType)
	if err != nil {
		return nil, err
	}

	result, err := p.recognizer.Recognize(ctx, preprocessed)
	if err != nil {
		return nil, err
	}

	text := Reconstruct(result)
	slog.Debug("recognized receipt",
		"lines", len(result.Lines),
		"confidence", result.OverallConfidence,
		"chars", len(text),
	)

	return &Recognition{Text: text, Confidence: result.OverallConfidence}, nil
}

// ParseReceiptText parses already-recognized text. Never fails; unparseable
// input degrades to sentinel defaults.
func (p *Pipeline) ParseReceiptText(text string, confidence float64) *parse.ParsedReceipt {
	return parse.ReceiptText(text, confidence)
}

// ScanReceipt runs the full pipeline on a receipt image or PDF.
func (p *Pipeline) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*parse.ParsedReceipt, error) {
	recognition, err := p.ProcessReceiptImage(ctx, imageData, contentType)
	if err != nil {
		return nil, err
	}
	return parse.ReceiptText(recognition.Text, recognition.Confidence), nil
}

// Cleanup releases the recognition engine.
func (p *Pipeline) Cleanup() error {
	return p.recognizer.Cleanup()
}

// Close implements Scanner.
func (p *Pipeline) Close() error {
	return p.Cleanup()
}
