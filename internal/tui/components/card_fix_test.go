package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// Padding under the short card must still carry background styling.
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has no ANSI codes, padding would render unstyled", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	joined := CardRow([]string{
		ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20),
		ContentCard("Short", "A", 30),
	})
	for i, line := range strings.Split(joined, "\n") {
		if w := lipgloss.Width(line); w != 50 {
			t.Errorf("line %d width = %d, want 50", i, w)
		}
	}
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(100, 3)
	if got[0] != 34 || got[1] != 33 || got[2] != 33 {
		t.Fatalf("LayoutRow(100, 3) = %v", got)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Revenue", Value: "R$ 6.000,00", Delta: "+20%", Change: 0.2, Trend: 1},
		{Label: "CAC", Value: "R$ 41,67", Delta: "+5%", Change: 0.05, Trend: -1},
		{Label: "ROAS", Value: "2,40x"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestBarChartLabelsAndFallback(t *testing.T) {
	chart := BarChart([]float64{1000, 2000, 3000}, []string{"Jan", "Fev", "Mar"}, theme.Active.Blue, 40, 6)
	lines := strings.Split(chart, "\n")
	if len(lines) != 6+2 {
		t.Fatalf("chart has %d lines, want 8 (6 rows, axis, labels)", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "Fev") {
		t.Errorf("label row missing month: %q", lines[len(lines)-1])
	}
	if !strings.Contains(lines[0], "5k") {
		t.Errorf("top axis label = %q, want ceiling 5k", lines[0])
	}

	spark := BarChart([]float64{1, 2}, nil, theme.Active.Blue, 10, 6)
	if strings.Contains(spark, "\n") {
		t.Error("narrow chart should fall back to a one-line sparkline")
	}
}

func TestFormatAxis(t *testing.T) {
	cases := map[float64]string{
		0.5:     "0.50",
		50:      "50",
		1500:    "1.5k",
		2000:    "2k",
		2500000: "2.5M",
		3e9:     "3B",
	}
	for in, want := range cases {
		if got := FormatAxis(in); got != want {
			t.Errorf("FormatAxis(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTabVisualWidth(t *testing.T) {
	for i, tab := range Tabs {
		inactive := TabVisualWidth(tab, false)
		want := len(tab.Name) + 2
		if tab.KeyPos < 0 {
			want += 3
		}
		if inactive != want {
			t.Errorf("tab %d inactive width = %d, want %d", i, inactive, want)
		}
		if got := TabVisualWidth(tab, true); got != len(tab.Name)+2 {
			t.Errorf("tab %d active width = %d, want %d", i, got, len(tab.Name)+2)
		}
	}
	if TabIdxByKey('m') != TabMonths || TabIdxByKey('z') != -1 {
		t.Error("TabIdxByKey mismatch")
	}
}
