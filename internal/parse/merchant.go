package parse

import (
	"regexp"
	"strings"
)

// merchantScanDepth is how many leading non-empty lines may contain the
// store name. Anything past the header block is item territory.
const merchantScanDepth = 7

// Signals that a header line is not a merchant name: addresses, phone
// numbers, receipt boilerplate.
var merchantSkip = regexp.MustCompile(
	`(?i)^\d|RECEIPT|INVOICE|#|TEL|WWW|@|\.COM|\b(ST|STREET|AVE|AVENUE|RD|ROAD|BLVD|DR|DRIVE|LANE|LN)\b`)

// Name-shape patterns tried in order; first match wins.
var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Za-z][A-Za-z\s&'.,\-]{2,45})$`),
	regexp.MustCompile(`(?i)^(.{2,40}\bSTORE)\b`),
	regexp.MustCompile(`(?i)^(.{2,40}\bMARKET)\b`),
	regexp.MustCompile(`(?i)^(.{2,40}\bINC)\b`),
}

var merchantAlphaOnly = regexp.MustCompile(`^[A-Za-z\s]+$`)

// Phrases that look alphabetic but are receipt courtesy text, not a name.
var merchantNoise = []string{"THANK", "YOU", "VISIT", "AGAIN", "CUSTOMER", "COPY"}

func extractMerchant(lines []string) string {
	depth := merchantScanDepth
	if len(lines) < depth {
		depth = len(lines)
	}
	header := lines[:depth]

	for _, line := range header {
		if len(line) < 3 || len(line) > 50 || merchantSkip.MatchString(line) {
			continue
		}
		for _, pattern := range merchantPatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				return strings.ToUpper(strings.TrimSpace(m[1]))
			}
		}
	}

	// Fallback: the first purely alphabetic header line that is not
	// courtesy boilerplate.
	for _, line := range header {
		if len(line) < 3 || len(line) > 40 || !merchantAlphaOnly.MatchString(line) {
			continue
		}
		if isMerchantNoise(line) {
			continue
		}
		return strings.ToUpper(strings.TrimSpace(line))
	}

	return UnknownMerchant
}

func isMerchantNoise(line string) bool {
	upper := strings.ToUpper(line)
	for _, phrase := range merchantNoise {
		if strings.Contains(upper, phrase) {
			return true
		}
	}
	return false
}
