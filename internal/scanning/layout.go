package scanning

import (
	"sort"
	"strings"
)

const (
	// avgCharWidth approximates one character cell in pixels for typical
	// receipt font metrics.
	avgCharWidth = 10

	// maxGapSpaces caps inserted spacing so recognition noise in a bounding
	// box cannot produce runaway padding.
	maxGapSpaces = 20
)

// Reconstruct rebuilds column-aware text from the word positions in a
// recognition result. Concatenating recognized words naively destroys the
// alignment that separates an item name from its price; horizontal gaps
// between bounding boxes are converted back into runs of spaces instead.
// With no line/word structure present the raw text is returned unchanged.
func Reconstruct(result *RecognitionResult) string {
	if len(result.Lines) == 0 {
		return result.RawText
	}

	var lines []string
	for _, words := range result.Lines {
		if line := reconstructLine(words); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func reconstructLine(words []WordToken) string {
	sorted := make([]WordToken, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Box.X0 < sorted[j].Box.X0 })

	var sb strings.Builder
	var prev *WordToken
	for i := range sorted {
		word := &sorted[i]
		if word.Text == "" {
			continue
		}
		if prev != nil {
			sb.WriteString(strings.Repeat(" ", gapSpaces(word.Box.X0-prev.Box.X1)))
		}
		sb.WriteString(word.Text)
		prev = word
	}
	return sb.String()
}

func gapSpaces(gap int) int {
	spaces := gap / avgCharWidth
	if spaces < 1 {
		return 1
	}
	if spaces > maxGapSpaces {
		return maxGapSpaces
	}
	return spaces
}
