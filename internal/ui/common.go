// Package ui contains small fyne widgets and helpers shared by the PH Radio
// window.
package ui

func clampFloat64(v, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// scrollSlack absorbs sub-pixel differences between measured and laid out
// text widths.
const scrollSlack float32 = 0.5

func tickerNeedsScroll(textWidth, viewportWidth float32) bool {
	return textWidth > 0 && textWidth-max(viewportWidth, 0) > scrollSlack
}
