package parse

import (
	"math"
	"regexp"
	"strconv"
)

// Tolerances of the total-validation chain. Calibrated against real receipt
// scans; do not tune casually.
const (
	totalExactTolerance    = 0.05 // absolute, covers per-line rounding
	totalRelativeTolerance = 0.10 // fraction of the items sum
	totalCeiling           = 10000
)

// Explicit "TOTAL <amount>" markers, most specific first.
var totalMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bTOTAL\s+\$?(\d{1,5}\.\d{2})`),
	regexp.MustCompile(`(?i)\bTOTAL:\s*\$?(\d{1,5}\.\d{2})`),
	regexp.MustCompile(`(?i)\bTOTAL\b.*?\$(\d{1,5}\.\d{2})`),
}

// Broader total-like shapes for the bottom-up fallback scan.
var totalFallbacks = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bTOTAL\b.*?(\d{1,4}\.\d{2})`),
	regexp.MustCompile(`(?i)\bAMOUNT\s+DUE\b.*?(\d{1,4}\.\d{2})`),
	regexp.MustCompile(`(?i)\bBALANCE\b.*?(\d{1,4}\.\d{2})`),
	regexp.MustCompile(`(?i)\b(?:GRAND|FINAL)\s+TOTAL\b.*?(\d{1,4}\.\d{2})`),
	regexp.MustCompile(`\$?(\d{1,4}\.\d{2})\s*$`),
	regexp.MustCompile(`(?i)(\d{1,4}\.\d{2})\s*TOTAL\b`),
}

var currencyAmount = regexp.MustCompile(`\$?(\d{1,4}\.\d{2})`)

// extractTotal selects the transaction amount. Tier order: marked candidate
// matching the items sum within 0.05, then the closest marked candidate
// within 10% of the items sum, then the first marked candidate, then the
// items sum itself, then a broad bottom-up scan, then the largest
// currency-shaped amount anywhere in the text. Never negative.
func extractTotal(lines []string, rawText string, items []LineItem) float64 {
	var itemsTotal float64
	for _, item := range items {
		itemsTotal += item.Price
	}

	candidates := markedTotals(lines)

	if len(items) > 0 && len(candidates) > 0 {
		for _, c := range candidates {
			if math.Abs(c-itemsTotal) <= totalExactTolerance {
				return c
			}
		}
		closest, diff := candidates[0], math.Abs(candidates[0]-itemsTotal)
		for _, c := range candidates[1:] {
			if d := math.Abs(c - itemsTotal); d < diff {
				closest, diff = c, d
			}
		}
		if diff <= totalRelativeTolerance*itemsTotal {
			return closest
		}
	}

	if len(candidates) > 0 {
		return candidates[0]
	}
	if len(items) > 0 {
		return itemsTotal
	}

	return fallbackTotal(lines, rawText)
}

func markedTotals(lines []string) []float64 {
	var candidates []float64
	for _, line := range lines {
		for _, marker := range totalMarkers {
			if m := marker.FindStringSubmatch(line); m != nil {
				if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
					candidates = append(candidates, amount)
				}
				break
			}
		}
	}
	return candidates
}

// fallbackTotal scans the last 15 lines bottom-up, where receipts print
// their summary block, then falls back to the largest plausible amount in
// the whole text.
func fallbackTotal(lines []string, rawText string) float64 {
	start := len(lines) - 15
	if start < 0 {
		start = 0
	}
	tail := lines[start:]
	for i := len(tail) - 1; i >= 0; i-- {
		for _, pattern := range totalFallbacks {
			m := pattern.FindStringSubmatch(tail[i])
			if m == nil {
				continue
			}
			if amount, err := strconv.ParseFloat(m[1], 64); err == nil && amount > 0 && amount < totalCeiling {
				return amount
			}
		}
	}

	var max float64
	for _, m := range currencyAmount.FindAllStringSubmatch(rawText, -1) {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil && amount > 0 && amount < totalCeiling && amount > max {
			max = amount
		}
	}
	return max
}
