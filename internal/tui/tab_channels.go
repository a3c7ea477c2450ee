package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

// updateChannelsKeys handles the channel checkbox list. ok is false when
// the key is not a channel key and should fall through to global handling.
func (a App) updateChannelsKeys(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.data.Channels)
	switch key {
	case "j", "down":
		a.channelCursor = clampInt(a.channelCursor+1, 0, n-1)
	case "k", "up":
		a.channelCursor = clampInt(a.channelCursor-1, 0, n-1)
	case "g", "home":
		a.channelCursor = 0
	case "G", "end":
		a.channelCursor = clampInt(n-1, 0, n-1)
	case " ", "space", "enter":
		if n == 0 {
			return a, nil, true
		}
		ch := a.data.Channels[a.channelCursor]
		a.channelSel[ch] = !a.channelSel[ch]
		a.recompute()
	case "a":
		// All on unless everything is already on, then all off.
		all := len(a.selectedChannels()) == n
		for _, ch := range a.data.Channels {
			a.channelSel[ch] = !all
		}
		a.recompute()
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderChannelsTab(cw int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	moneyStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	compact := a.isCompactLayout()

	// Checkbox, Invest, Share, ROAS, Trend
	fixed := 4 + 12 + 7 + 8 + 2
	if !compact {
		fixed += 13 // Attributed revenue
	}
	nameW := innerW - fixed - 1
	if nameW < 10 {
		nameW = 10
	}

	stats := make(map[string]model.ChannelStats, len(a.allChannels))
	for _, cs := range a.allChannels {
		stats[cs.Channel] = cs
	}
	labels := a.data.ChannelLabels()

	var body strings.Builder
	if compact {
		body.WriteString(headerStyle.Render(fmt.Sprintf("    %-*s %12s %6s %7s %s", nameW, "Channel", "Invested", "Share", "ROAS", " ")))
	} else {
		body.WriteString(headerStyle.Render(fmt.Sprintf("    %-*s %12s %6s %12s %7s %s", nameW, "Channel", "Invested", "Share", "Attributed", "ROAS", " ")))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	if len(a.data.Channels) == 0 {
		body.WriteString(mutedStyle.Render("No investment columns found. Name them INVESTIMENTO <channel> or list them in [columns] channels."))
	}

	for i, ch := range a.data.Channels {
		cs := stats[ch]
		selected := i == a.channelCursor
		bg := t.Surface
		if selected {
			bg = t.SurfaceBright
		}
		cell := func(fg lipgloss.Color) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(fg).Background(bg)
		}

		marker := "  "
		if selected {
			marker = "▸ "
		}
		box := "☐ "
		boxColor := t.TextDim
		if a.channelSel[ch] {
			box = "☑ "
			boxColor = t.SeriesColor(i)
		}

		trend := "·"
		trendColor := t.TextDim
		switch cs.TrendDirection {
		case 1:
			trend, trendColor = "▲", t.GreenBright
		case -1:
			trend, trendColor = "▼", t.Red
		}

		var line strings.Builder
		line.WriteString(cell(t.AccentBright).Render(marker))
		line.WriteString(cell(boxColor).Render(box))
		line.WriteString(cell(t.TextPrimary).Bold(selected).Render(fmt.Sprintf("%-*s", nameW, truncStr(labels[ch], nameW))))
		line.WriteString(cell(t.GreenBright).Render(fmt.Sprintf(" %12s", cli.FormatMoneyShort(cs.Investment))))
		line.WriteString(cell(t.Cyan).Render(fmt.Sprintf(" %5.1f%%", cs.SharePercent)))
		if !compact {
			line.WriteString(cell(t.TextMuted).Render(fmt.Sprintf(" %12s", cli.FormatMoneyShort(cs.AttributedRevenue))))
		}
		line.WriteString(cell(t.TextPrimary).Render(fmt.Sprintf(" %7s", cli.FormatRatio(cs.ROAS))))
		line.WriteString(cell(trendColor).Render(" " + trend))

		rendered := line.String()
		if pad := innerW - lipgloss.Width(rendered); pad > 0 {
			rendered += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(rendered)
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(dimStyle.Render("[j/k] move  [space] toggle  [a] all/none   Share and ROAS use every channel's spend"))

	// Totals for the checked channels
	s := a.stats
	var totals strings.Builder
	pairs := []struct{ k, v string }{
		{"Selected", fmt.Sprintf("%d of %d", len(a.channels), len(a.data.Channels))},
		{"Investment", cli.FormatMoney(s.Investment)},
		{"ROAS", cli.FormatRatio(s.ROAS)},
		{"CAC", cli.FormatMoney(s.CAC)},
		{"Profit", cli.FormatMoney(s.Profit)},
	}
	for i, p := range pairs {
		if i > 0 {
			totals.WriteString(mutedStyle.Render("   "))
		}
		totals.WriteString(mutedStyle.Render(p.k + " "))
		if p.k == "Investment" || p.k == "Profit" {
			totals.WriteString(moneyStyle.Render(p.v))
		} else {
			totals.WriteString(rowStyle.Render(p.v))
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Marketing Channels", body.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Selected Channels", totals.String(), cw))
	return b.String()
}
