package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

func newSimInput(investment float64) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "10000"
	ti.CharLimit = 24
	ti.Width = 24
	ti.SetValue(formatAmount(investment))
	return ti
}

func (a App) simStartEdit() (tea.Model, tea.Cmd) {
	a.simEditing = true
	a.simInput.CursorEnd()
	return a, a.simInput.Focus()
}

// updateSimulatorInput forwards keys to the investment input and
// re-projects on every keystroke.
func (a App) updateSimulatorInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		a.simEditing = false
		a.simInput.Blur()
		if a.simInvalid {
			a.simInput.SetValue(formatAmount(a.simInvestment))
			a.simInvalid = false
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.simInput, cmd = a.simInput.Update(msg)
	a.setSimInvestment(a.simInput.Value())
	return a, cmd
}

// setSimInvestment parses the typed amount and re-runs the projection.
// An empty or unparseable value keeps the last good projection.
func (a *App) setSimInvestment(text string) {
	v, ok := parseAmount(text, cli.ActiveCurrency())
	if !ok || pipeline.CheckInvestment(v) != nil {
		a.simInvalid = true
		return
	}
	a.simInvalid = false
	a.simInvestment = v
	a.sim = pipeline.Project(a.rows, a.channels, v)
}

func (a App) renderSimulatorTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	// Input card
	var in strings.Builder
	in.WriteString(label.Render("Hypothetical investment  "))
	if a.simEditing {
		in.WriteString(a.simInput.View())
	} else {
		in.WriteString(value.Render(cli.FormatMoney(a.simInvestment)))
	}
	in.WriteString("\n")
	switch {
	case a.simInvalid:
		in.WriteString(warn.Render("Not an amount; showing the last valid projection."))
	case a.simEditing:
		in.WriteString(dim.Render("Type an amount (1.500,00 or 1500). [Enter] done  [Esc] cancel"))
	default:
		in.WriteString(dim.Render("[Enter] edit the amount"))
	}

	// Projection card
	sim := a.sim
	profitColor := t.GreenBright
	if sim.ProjectedProfit < 0 {
		profitColor = t.Red
	}
	var proj strings.Builder
	proj.WriteString(label.Render(fmt.Sprintf("%-20s", "Historical ROAS")) + value.Render(cli.FormatRatio(sim.AvgROAS)) + "\n")
	proj.WriteString(label.Render(fmt.Sprintf("%-20s", "Projected revenue")) +
		lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render(cli.FormatMoney(sim.ProjectedRevenue)) + "\n")
	proj.WriteString(label.Render(fmt.Sprintf("%-20s", "Projected profit")) +
		lipgloss.NewStyle().Foreground(profitColor).Background(t.Surface).Bold(true).Render(cli.FormatMoney(sim.ProjectedProfit)))
	if sim.AvgROAS == 0 {
		proj.WriteString("\n\n")
		proj.WriteString(warn.Render("No investment in the filtered rows; select channels or months with spend."))
	} else {
		proj.WriteString("\n\n")
		proj.WriteString(dim.Render(fmt.Sprintf("%s × %s, from %d months and %d channels",
			cli.FormatMoney(sim.Investment), cli.FormatRatio(sim.AvgROAS), a.stats.Months, len(a.channels))))
	}

	// Forecast card
	f := a.forecast
	var fc strings.Builder
	if !f.Valid {
		fc.WriteString(dim.Render("A trend needs at least two recognised months."))
	} else {
		dir := "▲"
		dirColor := t.GreenBright
		if f.Slope < 0 {
			dir, dirColor = "▼", t.Red
		}
		fc.WriteString(label.Render(fmt.Sprintf("%-20s", "Next month")) + value.Render(source.MonthLabel(f.NextMonthID)) + "\n")
		fc.WriteString(label.Render(fmt.Sprintf("%-20s", "Trend revenue")) + value.Render(cli.FormatMoney(f.Revenue)) + "\n")
		fc.WriteString(label.Render(fmt.Sprintf("%-20s", "Monthly change")) +
			lipgloss.NewStyle().Foreground(dirColor).Background(t.Surface).Render(dir+" "+cli.FormatMoneyShort(f.Slope)) + "\n")
		fc.WriteString(label.Render(fmt.Sprintf("%-20s", "Fit (R²)")) + value.Render(fmt.Sprintf("%.2f", f.RSquared)))
	}

	// Scenario ladder around the current amount
	var sc strings.Builder
	for i, mult := range []float64{0.5, 1, 1.5, 2} {
		if i > 0 {
			sc.WriteString("\n")
		}
		inv := a.simInvestment * mult
		rev := pipeline.Simulate(sim.AvgROAS, inv)
		sc.WriteString(label.Render(fmt.Sprintf("%4.1f×  ", mult)))
		sc.WriteString(value.Render(fmt.Sprintf("%12s", cli.FormatMoneyShort(inv))))
		sc.WriteString(label.Render("  →  "))
		sc.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Render(fmt.Sprintf("%12s", cli.FormatMoneyShort(rev))))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("What-if Simulator", in.String(), cw))
	b.WriteString("\n")
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Projection", proj.String(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Linear Trend", fc.String(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Scenarios", sc.String(), cw))
		return b.String()
	}
	thirds := components.LayoutRow(cw, 3)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Projection", proj.String(), thirds[0]),
		components.ContentCard("Linear Trend", fc.String(), thirds[1]),
		components.ContentCard("Scenarios", sc.String(), thirds[2]),
	}))
	return b.String()
}
