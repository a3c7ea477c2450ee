package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Month", "Revenue"},
		Rows: [][]string{
			{"Jan", "R$ 1.000,00"},
			{"---"},
			{"Total", "R$ 10,00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width %d, want %d: %q", i, lipgloss.Width(l), width, l)
		}
	}
	if !strings.Contains(lines[5], "   R$ 10,00 ") {
		t.Errorf("value column not right-aligned: %q", lines[5])
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(zeros) = %q", got)
	}
}

func TestRenderGoalBar(t *testing.T) {
	withCurrency(t, "BRL")
	got := RenderGoalBar(1.5, 10)
	if !strings.Contains(got, strings.Repeat("█", 10)) {
		t.Errorf("over-target bar not full: %q", got)
	}
	if !strings.HasSuffix(got, "150,0%") {
		t.Errorf("label = %q", got)
	}
}
