// Package parse turns reconstructed receipt text into a structured,
// validated result. Every extraction stage degrades to a default instead of
// failing: once recognition succeeds the caller always gets a ParsedReceipt,
// with quality signaled only through Confidence and the sentinel values
// UnknownMerchant, zero amount and empty items.
package parse

import (
	"strings"
	"time"
)

// UnknownMerchant is the merchant sentinel when no line looks like a store name.
const UnknownMerchant = "UNKNOWN MERCHANT"

// LineItem is one parsed purchase entry. Tax lines are kept as items with
// IsTax set; they count toward the validated total.
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity,omitempty"`
	IsTax    bool    `json:"is_tax,omitempty"`
}

// ParsedReceipt is the terminal artifact of the extraction pipeline, handed
// off for user confirmation before anything is persisted.
type ParsedReceipt struct {
	Merchant   string     `json:"merchant"`
	Amount     float64    `json:"amount"`
	Date       string     `json:"date"` // YYYY-MM-DD
	Items      []LineItem `json:"items"`
	RawText    string     `json:"raw_text"`
	Confidence float64    `json:"confidence"`
}

// ReceiptText parses reconstructed receipt text. recognitionConfidence is the
// engine's 0-100 score and is discounted for parsing uncertainty.
func ReceiptText(text string, recognitionConfidence float64) *ParsedReceipt {
	lines := nonEmptyLines(text)

	items := extractItems(lines)

	return &ParsedReceipt{
		Merchant:   extractMerchant(lines),
		Amount:     extractTotal(lines, text, items),
		Date:       extractDate(lines),
		Items:      items,
		RawText:    text,
		Confidence: Score(recognitionConfidence),
	}
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// today returns the current date formatted as a receipt date. Indirected for
// tests that pin the clock.
var today = func() string {
	return time.Now().Format("2006-01-02")
}
