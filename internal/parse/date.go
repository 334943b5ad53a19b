package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a date shape with the time layout used to validate it.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "1/2/2006"},
	{regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4})\b`), "1-2-2006"},
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), "2006-01-02"},
}

var monthDate = regexp.MustCompile(
	`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`)

// extractDate returns the first calendar-valid date found in any line,
// normalized to YYYY-MM-DD. Defaults to today when nothing parses.
func extractDate(lines []string) string {
	for _, line := range lines {
		for _, p := range datePatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if d, err := time.Parse(p.layout, m[1]); err == nil {
				return d.Format("2006-01-02")
			}
		}
		if m := monthDate.FindStringSubmatch(line); m != nil {
			candidate := fmt.Sprintf("%s %s %s", normalizeMonth(m[1]), m[2], m[3])
			if d, err := time.Parse("Jan 2 2006", candidate); err == nil {
				return d.Format("2006-01-02")
			}
		}
	}
	return today()
}

func normalizeMonth(abbr string) string {
	abbr = strings.ToLower(abbr)
	return strings.ToUpper(abbr[:1]) + abbr[1:]
}
