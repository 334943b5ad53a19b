package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// itemPattern pairs a line shape with its extractor so each heuristic can be
// tested in isolation. Patterns are tried in order; the first one that
// matches a line claims it, whether or not the candidate is then accepted.
type itemPattern struct {
	tag     string
	re      *regexp.Regexp
	extract func(m []string) (quantity int, name string, price string)
}

var itemPatterns = []itemPattern{
	{
		tag: "qty-name-price",
		re:  regexp.MustCompile(`^(\d{1,2})\s+(.+?)\s+\$?(\d{1,3}\.\d{2})$`),
		extract: func(m []string) (int, string, string) {
			qty, _ := strconv.Atoi(m[1])
			return qty, m[2], m[3]
		},
	},
	{
		tag: "name-columns-price",
		re:  regexp.MustCompile(`^(.+?)\s{2,}\$?(\d{1,3}\.\d{2})$`),
		extract: func(m []string) (int, string, string) {
			return 0, m[1], m[2]
		},
	},
	{
		tag: "name-price",
		re:  regexp.MustCompile(`^(.{2,30}?)\s+\$?(\d{1,3}\.\d{2})$`),
		extract: func(m []string) (int, string, string) {
			return 0, m[1], m[2]
		},
	},
}

var taxLine = regexp.MustCompile(`(?i)\b(TAX|HST|GST|PST|VAT)\b`)

// Summary, boilerplate, payment and metadata markers that disqualify a line
// from being an item. Tax lines bypass this list.
var itemExclude = regexp.MustCompile(
	`(?i)\b(TOTAL|SUB\w*|GRAND|FINAL|CHANGE|BALANCE|RECEIPT|STORE|THANK|VISIT|AGAIN|CUSTOMER|COPY|` +
		`CASH|CREDIT|DEBIT|VISA|MASTERCARD|AMEX|TENDER|DATE|TIME|CLERK|CASHIER|REG)\b`)

var numericOnly = regexp.MustCompile(`^[\d.,\s]+$`)
var hasLetter = regexp.MustCompile(`[A-Za-z]`)

func extractItems(lines []string) []LineItem {
	var items []LineItem
	for _, line := range lines {
		for _, pattern := range itemPatterns {
			m := pattern.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			quantity, name, priceStr := pattern.extract(m)
			if item, ok := buildItem(line, quantity, name, priceStr); ok {
				items = append(items, item)
			}
			break
		}
	}
	return items
}

func buildItem(line string, quantity int, name, priceStr string) (LineItem, bool) {
	name = strings.TrimSpace(name)
	isTax := taxLine.MatchString(name) || taxLine.MatchString(line)

	if !isTax && itemExclude.MatchString(line) {
		return LineItem{}, false
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 || price > 1000 {
		return LineItem{}, false
	}
	if len(name) < 2 || len(name) > 50 {
		return LineItem{}, false
	}
	if numericOnly.MatchString(name) || !hasLetter.MatchString(name) {
		return LineItem{}, false
	}

	return LineItem{
		Name:     strings.ToUpper(name),
		Price:    price,
		Quantity: quantity,
		IsTax:    isTax,
	}, true
}
