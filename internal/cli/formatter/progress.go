package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45% for a percentage in
// 0..100. Green above two thirds, yellow above one third, red below.
func RenderProgress(pct float64, width int) string {
	pct = clampPct(pct)
	if width < 2 {
		width = 2
	}

	filled := int(pct / 100 * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 33:
		style = StyleRed
	case pct < 66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct)
}

// RenderComplianceBar splits width between valid, expiring, expired and
// missing counts, coloured green, yellow, red and dim.
func RenderComplianceBar(valid, expiring, expired, missing, width int) string {
	total := valid + expiring + expired + missing
	if total == 0 || width < 1 {
		return StyleDim.Render(strings.Repeat(emptyBlock, max(width, 0)))
	}
	segment := func(n int) int { return n * width / total }
	v, e, x := segment(valid), segment(expiring), segment(expired)
	m := width - v - e - x
	return StyleGreen.Render(strings.Repeat(filledBlock, v)) +
		StyleYellow.Render(strings.Repeat(filledBlock, e)) +
		StyleRed.Render(strings.Repeat(filledBlock, x)) +
		StyleDim.Render(strings.Repeat(emptyBlock, m))
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
