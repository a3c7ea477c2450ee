package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

// metricDelta builds the delta line for a card. trend is +1 when a rise is
// good and -1 when it is bad.
func (a App) metricDelta(cur, prev float64, trend int) (string, float64, int) {
	if !a.hasPrev {
		return "", 0, 0
	}
	change := cli.FormatChange(cur, prev)
	if change == "" {
		return "", 0, 0
	}
	return change + " vs prev", cur - prev, trend
}

func (a App) overviewMetrics() []components.Metric {
	s, p := a.stats, a.prevStats
	metric := func(label, value string, cur, prev float64, trend int) components.Metric {
		delta, change, tr := a.metricDelta(cur, prev, trend)
		return components.Metric{Label: label, Value: value, Delta: delta, Change: change, Trend: tr}
	}
	return []components.Metric{
		metric("Revenue", cli.FormatMoneyShort(s.Revenue), s.Revenue, p.Revenue, 1),
		metric("Avg Ticket", cli.FormatMoneyShort(s.AvgTicket), s.AvgTicket, p.AvgTicket, 1),
		metric("Customers", cli.FormatCount(s.Customers), s.Customers, p.Customers, 1),
		metric("ROAS", cli.FormatRatio(s.ROAS), s.ROAS, p.ROAS, 1),
		metric("CAC", cli.FormatMoneyShort(s.CAC), s.CAC, p.CAC, -1),
		metric("Profit", cli.FormatMoneyShort(s.Profit), s.Profit, p.Profit, 1),
	}
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	if len(a.rows) == 0 {
		return components.ContentCard("Overview", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render("No rows match the selected months. Press 0 on the Months tab to reset."), cw)
	}

	// Row 1: metric cards, split in two rows when narrow
	metrics := a.overviewMetrics()
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:3], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[3:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: revenue by month + channel split
	halves := components.LayoutRow(cw, 2)
	chartW, splitW := halves[0], halves[1]
	if a.isCompactLayout() {
		chartW, splitW = cw, cw
	}

	vals := pipeline.MonthlyRevenue(a.months)
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	chartCard := components.ContentCard(
		fmt.Sprintf("Revenue by Month (%s)", cli.FormatMoneyShort(a.stats.Revenue)),
		components.BarChart(vals, monthLabels(a.months), t.Blue, components.CardInnerWidth(chartW), chartH),
		chartW,
	)
	splitCard := components.ContentCard("Channel Split", a.renderChannelSplit(components.CardInnerWidth(splitW)), splitW)

	if a.isCompactLayout() {
		b.WriteString(chartCard)
		b.WriteString("\n")
		b.WriteString(splitCard)
	} else {
		b.WriteString(components.CardRow([]string{chartCard, splitCard}))
	}
	b.WriteString("\n")

	// Row 3: goals + distribution
	goalCard := components.ContentCard("Goals", a.renderGoals(components.CardInnerWidth(chartW)), chartW)
	distCard := components.ContentCard("Monthly Revenue", a.renderDistribution(), splitW)
	if a.isCompactLayout() {
		b.WriteString(goalCard)
		b.WriteString("\n")
		b.WriteString(distCard)
	} else {
		b.WriteString(components.CardRow([]string{goalCard, distCard}))
	}

	return b.String()
}

func (a App) renderChannelSplit(innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(a.channels) == 0 {
		return muted.Render("No channels selected: investment, ROAS and CAC are 0.")
	}

	labels := a.data.ChannelLabels()
	nameW := innerW / 3
	if nameW < 8 {
		nameW = 8
	}
	barW := innerW - nameW - 8
	if barW < 1 {
		barW = 1
	}

	peak := 0.0
	for _, cs := range a.channelStats {
		if cs.SharePercent > peak {
			peak = cs.SharePercent
		}
	}

	var body strings.Builder
	for i, cs := range a.channelStats {
		if i > 0 {
			body.WriteString("\n")
		}
		color := t.SeriesColor(channelIndex(a.data.Channels, cs.Channel))
		body.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).
			Render(fmt.Sprintf("%-*s", nameW, truncStr(labels[cs.Channel], nameW))))
		body.WriteString(space.Render(" "))
		body.WriteString(components.HBar(cs.SharePercent, peak, barW, color))
		body.WriteString(muted.Render(fmt.Sprintf(" %5.1f%%", cs.SharePercent)))
	}
	return body.String()
}

func (a App) renderGoals(innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	g := a.goals
	if g.MonthlyRevenueTarget == nil && g.MaxCAC == nil {
		return muted.Render("No goals set. Add them on the Settings tab.")
	}

	var body strings.Builder
	if g.MonthlyRevenueTarget != nil {
		barW := innerW - 14 - 6
		if barW < 5 {
			barW = 5
		}
		body.WriteString(components.GoalBar("Monthly goal", g.RevenueProgress, 13, barW))
		body.WriteString("\n")
		body.WriteString(muted.Render(fmt.Sprintf("avg %s of %s · %d/%d months on target",
			cli.FormatMoneyShort(g.AvgMonthlyRevenue),
			cli.FormatMoneyShort(*g.MonthlyRevenueTarget),
			g.MonthsOnTarget, len(a.months))))
	}
	if g.MaxCAC != nil {
		if body.Len() > 0 {
			body.WriteString("\n")
		}
		status := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("within limit")
		if !g.CACWithinLimit {
			status = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).Render("above limit")
		}
		body.WriteString(muted.Render("CAC ") + value.Render(cli.FormatMoney(a.stats.CAC)) +
			muted.Render(" / max "+cli.FormatMoney(*g.MaxCAC)+"  ") + status)
	}
	return body.String()
}

func (a App) renderDistribution() string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	d := a.dist
	rows := []struct{ k, v string }{
		{"Median", cli.FormatMoney(d.Median)},
		{"Min / Max", cli.FormatMoneyShort(d.Min) + " / " + cli.FormatMoneyShort(d.Max)},
		{"Std dev", cli.FormatMoney(d.StdDev)},
		{"Rev/Customer", cli.FormatMoney(a.stats.RevenuePerCustomer)},
		{"Margin", cli.FormatPercent(a.stats.Margin)},
	}
	var body strings.Builder
	for i, r := range rows {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(label.Render(fmt.Sprintf("%-13s", r.k)))
		body.WriteString(value.Render(r.v))
	}
	return body.String()
}

// monthLabels returns short chart labels, falling back to the sheet's text
// for months that could not be recognised.
func monthLabels(months []model.MonthStats) []string {
	out := make([]string, len(months))
	for i, m := range months {
		if m.MonthID != 0 {
			out[i] = source.MonthLabel(m.MonthID)
		} else {
			out[i] = m.Month
		}
	}
	return out
}

func channelIndex(all []string, ch string) int {
	for i, c := range all {
		if c == ch {
			return i
		}
	}
	return 0
}
