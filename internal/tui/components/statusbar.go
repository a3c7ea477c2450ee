package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports about the loaded workbook.
type StatusInfo struct {
	File      string
	Rows      int
	LoadTime  string
	Reloading bool
	Watching  bool
	Message   string // transient note, e.g. "saved" or a reload error
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	bar := lipgloss.NewStyle().Background(t.SurfaceHover)
	keys := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)
	note := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.SurfaceHover)
	right := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.SurfaceHover)

	left := keys.Render(" [?]help  [r]eload  [q]uit")
	if info.Message != "" {
		left += note.Render("  " + info.Message)
	}

	var parts []string
	if info.File != "" {
		parts = append(parts, info.File)
	}
	if info.Rows > 0 {
		parts = append(parts, strconv.Itoa(info.Rows)+" rows")
	}
	switch {
	case info.Reloading:
		parts = append(parts, "reloading…")
	case info.LoadTime != "":
		parts = append(parts, info.LoadTime)
	}
	if info.Watching {
		parts = append(parts, "watching")
	}
	rightStr := right.Render(strings.Join(parts, " · ") + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}
	return left + bar.Render(strings.Repeat(" ", padding)) + rightStr
}

