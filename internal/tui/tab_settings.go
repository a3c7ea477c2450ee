package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldDataFile
	settingsFieldSheet
	settingsFieldCurrency
	settingsFieldInvestment
	settingsFieldRevenueGoal
	settingsFieldMaxCAC
	settingsFieldAutoReload
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.settings.cursor = clampInt(a.settings.cursor+1, 0, settingsFieldCount-1)
	case "k", "up":
		a.settings.cursor = clampInt(a.settings.cursor-1, 0, settingsFieldCount-1)
	case "enter":
		return a.settingsStartEdit()
	}
	return a, nil
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldDataFile:
		ti.Placeholder = config.DefaultDataFile
		ti.SetValue(cfg.General.DataFile)
	case settingsFieldSheet:
		ti.Placeholder = "(first sheet)"
		ti.SetValue(cfg.General.Sheet)
	case settingsFieldCurrency:
		ti.Placeholder = "BRL, USD, EUR..."
		ti.SetValue(config.NormalizeCurrencyCode(cfg.Currency.Code))
	case settingsFieldInvestment:
		ti.Placeholder = "10000"
		ti.SetValue(formatAmount(cfg.Simulator.DefaultInvestment))
	case settingsFieldRevenueGoal:
		ti.Placeholder = "monthly revenue target, leave empty to clear"
		if g := cfg.Goals.MonthlyRevenue; g != nil {
			ti.SetValue(formatAmount(*g))
		}
	case settingsFieldMaxCAC:
		ti.Placeholder = "maximum CAC, leave empty to clear"
		if c := cfg.Goals.MaxCAC; c != nil {
			ti.SetValue(formatAmount(*c))
		}
	case settingsFieldAutoReload:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoReload))
	}

	ti.CursorEnd()
	cmd := ti.Focus()
	a.settings.input = ti
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		cmd := a.settingsSave()
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, writes the config file and
// applies the change to the running dashboard.
func (a *App) settingsSave() tea.Cmd {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	cur := config.ResolveCurrency(cfg.Currency)

	optionalAmount := func() (*float64, error) {
		if val == "" {
			return nil, nil
		}
		v, ok := parseAmount(val, cur)
		if !ok || v <= 0 {
			return nil, fmt.Errorf("%q is not a positive amount", val)
		}
		return &v, nil
	}

	var err error
	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			err = fmt.Errorf("unknown theme %q", val)
			break
		}
		cfg.Appearance.Theme = val
	case settingsFieldDataFile:
		if err = validateDataFile(val); err == nil {
			cfg.General.DataFile = val
		}
	case settingsFieldSheet:
		cfg.General.Sheet = val
	case settingsFieldCurrency:
		code := config.NormalizeCurrencyCode(val)
		if _, ok := config.KnownCurrencies[code]; !ok {
			err = fmt.Errorf("unknown currency %q", val)
			break
		}
		cfg.Currency = config.CurrencyConfig{Code: code}
	case settingsFieldInvestment:
		v, ok := parseAmount(val, cur)
		if !ok || v < 0 {
			err = fmt.Errorf("%q is not an amount", val)
			break
		}
		cfg.Simulator.DefaultInvestment = v
	case settingsFieldRevenueGoal:
		var g *float64
		if g, err = optionalAmount(); err == nil {
			cfg.Goals.MonthlyRevenue = g
		}
	case settingsFieldMaxCAC:
		var c *float64
		if c, err = optionalAmount(); err == nil {
			cfg.Goals.MaxCAC = c
		}
	case settingsFieldAutoReload:
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			err = errors.New("enter true or false")
			break
		}
		cfg.TUI.AutoReload = b
	}

	if err != nil {
		a.settings.saveErr = err
		return nil
	}
	if err := config.Save(cfg); err != nil {
		a.settings.saveErr = err
		return nil
	}
	a.settings.saveErr = nil
	return a.applyConfig(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	optional := func(v *float64) string {
		if v == nil {
			return "(not set)"
		}
		return cli.FormatMoney(*v)
	}
	sheet := cfg.General.Sheet
	if sheet == "" {
		sheet = "(first sheet)"
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Data File", cfg.General.DataFile},
		{"Sheet", sheet},
		{"Currency", config.NormalizeCurrencyCode(cfg.Currency.Code)},
		{"Default Investment", cli.FormatMoney(cfg.Simulator.DefaultInvestment)},
		{"Monthly Goal", optional(cfg.Goals.MonthlyRevenue)},
		{"Max CAC", optional(cfg.Goals.MaxCAC)},
		{"Auto Reload", strconv.FormatBool(a.autoReload)},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	// Workbook info card
	info := []struct{ k, v string }{
		{"Workbook", a.path},
		{"Config file", config.ConfigPath()},
		{"Cache", pipeline.CachePath()},
		{"Load time", fmt.Sprintf("%.2fs", a.loadTime.Seconds())},
	}
	if a.data != nil {
		info = append(info,
			struct{ k, v string }{"Sheet loaded", a.data.Sheet},
			struct{ k, v string }{"Rows", cli.FormatNumber(int64(len(a.data.Rows)))},
			struct{ k, v string }{"Channels", strconv.Itoa(len(a.data.Channels))},
			struct{ k, v string }{"Cleaned cells", cli.FormatNumber(int64(a.data.CleanedCells))},
			struct{ k, v string }{"Unparsed cells", cli.FormatNumber(int64(a.data.ParseFailures))},
		)
	}
	var infoBody strings.Builder
	for i, kv := range info {
		if i > 0 {
			infoBody.WriteString("\n")
		}
		v := kv.v
		if kv.k == "Workbook" || kv.k == "Config file" || kv.k == "Cache" {
			v = truncPath(v, innerW-18)
		}
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", kv.k+":")))
		infoBody.WriteString(valueStyle.Render(v))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Workbook", infoBody.String(), cw))
	return b.String()
}

// truncPath shortens a path from the left, keeping the file name.
func truncPath(p string, limit int) string {
	r := []rune(p)
	if limit <= 1 || len(r) <= limit {
		return p
	}
	base := filepath.Base(p)
	if len([]rune(base))+2 >= limit {
		return truncStr(base, limit)
	}
	return "…" + string(r[len(r)-limit+1:])
}
