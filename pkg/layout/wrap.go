// Package layout breaks text into lines and picks the largest font size at
// which a block of lines fits a box.
package layout

import "strings"

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) (float64, error)

// Wrap breaks text into lines no wider than maxWidth by greedily appending
// whitespace-separated words. Words are never split: a word wider than
// maxWidth sits alone on its line. Blank text yields no lines.
func Wrap(text string, measure MeasureFunc, maxWidth float64) ([]string, error) {
	words := strings.Fields(text)
	lines := make([]string, 0, len(words))
	if len(words) == 0 {
		return lines, nil
	}

	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		width, err := measure(candidate)
		if err != nil {
			return nil, err
		}
		if width <= maxWidth {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur), nil
}

// CenterX returns the left edge that centers a line of width w on centerX.
func CenterX(centerX int, w float64) int {
	return centerX - int(w/2)
}
