package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = clamp(idx, 0, len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders vertical bars, one per value, with a y-axis scaled to a
// round ceiling and one label under each bar. Narrow widths fall back to a
// sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	ceiling := niceCeiling(maxOf(values))
	axisW := len(FormatAxis(ceiling)) + 1

	chartW := width - axisW - 1
	barW := (chartW - (n - 1)) / n
	if barW < 1 {
		return Sparkline(values, color)
	}
	if barW > 6 {
		barW = 6
	}
	axisLen := n*barW + n - 1

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)
	eighths := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		if row == height || row == (height+1)/2 {
			label = FormatAxis(top)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", axisW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(space.Render(" "))
			}
			var cell string
			switch {
			case v >= top:
				cell = strings.Repeat("█", barW)
			case v > bottom:
				idx := clamp(int((v-bottom)/(top-bottom)*8), 1, 8)
				cell = strings.Repeat(string(eighths[idx]), barW)
			default:
				b.WriteString(space.Render(strings.Repeat(" ", barW)))
				continue
			}
			b.WriteString(barStyle.Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		cells := make([]string, n)
		for i, l := range labels {
			r := []rune(l)
			if len(r) > barW {
				r = r[:barW]
			}
			cells[i] = fmt.Sprintf("%-*s", barW, string(r))
		}
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", axisW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(strings.Join(cells, " "), " ")))
	}
	return b.String()
}

// HBar renders a horizontal bar of value relative to peak, width cells wide.
func HBar(value, peak float64, width int, color lipgloss.Color) string {
	t := theme.Active
	if peak <= 0 || width <= 0 {
		return lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", max(width, 0)))
	}
	filled := clamp(int(math.Round(value/peak*float64(width))), 0, width)
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("·", width-filled))
}

// niceCeiling rounds v up to 1, 2 or 5 times a power of ten.
func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*base {
			return m * base
		}
	}
	return 10 * base
}

// FormatAxis abbreviates an axis value: 1500 -> "1.5k", 2000000 -> "2M".
func FormatAxis(v float64) string {
	trim := func(f float64, suffix string) string {
		s := fmt.Sprintf("%.1f", f)
		s = strings.TrimSuffix(s, ".0")
		return s + suffix
	}
	switch {
	case v >= 1e9:
		return trim(v/1e9, "B")
	case v >= 1e6:
		return trim(v/1e6, "M")
	case v >= 1e3:
		return trim(v/1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func maxOf(values []float64) float64 {
	peak := math.Inf(-1)
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
