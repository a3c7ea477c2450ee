package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

// updateMonthsKeys handles the month multiselect and the range slider.
func (a App) updateMonthsKeys(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.allMonths)
	switch key {
	case "j", "down":
		a.monthCursor = clampInt(a.monthCursor+1, 0, n-1)
	case "k", "up":
		a.monthCursor = clampInt(a.monthCursor-1, 0, n-1)
	case "g", "home":
		a.monthCursor = 0
	case "G", "end":
		a.monthCursor = clampInt(n-1, 0, n-1)
	case " ", "space", "enter":
		if n == 0 {
			return a, nil, true
		}
		label := a.allMonths[a.monthCursor].Month
		if a.monthSel[label] {
			delete(a.monthSel, label)
		} else {
			a.monthSel[label] = true
		}
		a.recompute()
	case "[":
		a.moveRange(-1, 0)
	case "]":
		a.moveRange(1, 0)
	case "{":
		a.moveRange(0, -1)
	case "}":
		a.moveRange(0, 1)
	case "0":
		a.monthSel = make(map[string]bool)
		a.rangeFrom, a.rangeTo = a.minMonth, a.maxMonth
		a.recompute()
	default:
		return a, nil, false
	}
	return a, nil, true
}

// moveRange shifts the slider handles. The start never passes the end.
func (a *App) moveRange(dFrom, dTo int) {
	if a.minMonth == 0 {
		return
	}
	a.rangeFrom = clampInt(a.rangeFrom+dFrom, a.minMonth, a.rangeTo)
	a.rangeTo = clampInt(a.rangeTo+dTo, a.rangeFrom, a.maxMonth)
	a.recompute()
}

// monthIncluded reports whether m passes the current month filters.
func (a App) monthIncluded(m model.MonthStats) bool {
	if len(a.monthSel) > 0 && !a.monthSel[m.Month] {
		return false
	}
	from, to := a.rangeBounds()
	if from == 0 && to == 0 {
		return true
	}
	if m.MonthID == 0 {
		return false
	}
	return (from == 0 || m.MonthID >= from) && (to == 0 || m.MonthID <= to)
}

func (a App) renderMonthsTab(cw int) string {
	var b strings.Builder
	b.WriteString(components.ContentCard("Month Range", a.renderRangeSlider(components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Months", a.renderMonthList(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Detail", a.renderMonthDetail(), cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 5)
	listW := widths[0] + widths[1] + widths[2]
	detailW := widths[3] + widths[4]
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Months", a.renderMonthList(components.CardInnerWidth(listW)), listW),
		components.ContentCard("Detail", a.renderMonthDetail(), detailW),
	}))
	return b.String()
}

func (a App) renderRangeSlider(innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if a.minMonth == 0 {
		return muted.Render("No recognised month names; the range filter is unavailable.")
	}

	on := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true)
	off := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.SurfaceHover)
	handle := lipgloss.NewStyle().Foreground(t.Background).Background(t.AccentBright).Bold(true)

	var track strings.Builder
	for id := a.minMonth; id <= a.maxMonth; id++ {
		label := fmt.Sprintf(" %-3s ", source.MonthLabel(id))
		switch {
		case id == a.rangeFrom || id == a.rangeTo:
			track.WriteString(handle.Render(label))
		case id > a.rangeFrom && id < a.rangeTo:
			track.WriteString(on.Render(label))
		default:
			track.WriteString(off.Render(label))
		}
	}

	summary := muted.Render(fmt.Sprintf("  %s – %s", source.MonthLabel(a.rangeFrom), source.MonthLabel(a.rangeTo)))
	if sel := a.selectedMonths(); len(sel) > 0 {
		summary += dim.Render(fmt.Sprintf("  · %d picked", len(sel)))
	}

	out := track.String()
	if lipgloss.Width(out)+lipgloss.Width(summary) <= innerW {
		out += summary
	} else {
		out += "\n" + summary
	}
	return out + "\n" + dim.Render("[ ] move start   { } move end   0 reset")
}

func (a App) renderMonthList(innerW int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	labelW := 10
	revW := 12
	barW := innerW - 4 - labelW - revW - 2
	if barW < 4 {
		barW = 4
	}

	peak := 0.0
	for _, m := range a.allMonths {
		if m.Revenue > peak {
			peak = m.Revenue
		}
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("    %-*s %*s", labelW, "Month", revW, "Revenue")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for i, m := range a.allMonths {
		selected := i == a.monthCursor
		included := a.monthIncluded(m)
		bg := t.Surface
		if selected {
			bg = t.SurfaceBright
		}
		fg := t.TextPrimary
		barColor := t.Blue
		if !included {
			fg = t.TextDim
			barColor = t.TextDim
		}
		style := lipgloss.NewStyle().Foreground(fg).Background(bg)

		marker := "  "
		if selected {
			marker = "▸ "
		}
		box := "☐ "
		if a.monthSel[m.Month] {
			box = "☑ "
		}

		line := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker) +
			lipgloss.NewStyle().Foreground(t.Accent).Background(bg).Render(box) +
			style.Bold(selected).Render(fmt.Sprintf("%-*s", labelW, truncStr(m.Month, labelW))) +
			style.Render(fmt.Sprintf(" %*s ", revW, cli.FormatMoneyShort(m.Revenue))) +
			components.HBar(m.Revenue, peak, barW, barColor)
		if pad := innerW - lipgloss.Width(line); pad > 0 {
			line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	body.WriteString(dimStyle.Render("[j/k] move  [space] pick month (none picked = all)"))
	return body.String()
}

func (a App) renderMonthDetail() string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	if len(a.allMonths) == 0 {
		return label.Render("No months loaded.")
	}
	m := a.allMonths[a.monthCursor]

	status := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("included")
	if !a.monthIncluded(m) {
		status = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("filtered out")
	}

	rows := []struct{ k, v string }{
		{"Revenue", cli.FormatMoney(m.Revenue)},
		{"Customers", cli.FormatCount(m.Customers)},
		{"Investment", cli.FormatMoney(m.Investment)},
		{"ROAS", cli.FormatRatio(m.ROAS)},
		{"CAC", cli.FormatMoney(m.CAC)},
		{"Profit", cli.FormatMoney(m.Profit)},
	}

	var body strings.Builder
	body.WriteString(title.Render(m.Month))
	body.WriteString(label.Render("  "))
	body.WriteString(status)
	body.WriteString("\n\n")
	for i, r := range rows {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(label.Render(fmt.Sprintf("%-12s", r.k)))
		body.WriteString(value.Render(r.v))
	}
	return body.String()
}
