package tui

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	DataFile          string
	Sheet             string
	Currency          string
	Theme             string
	DefaultInvestment string
	MonthlyRevenue    string
	MaxCAC            string
}

// SetupValuesFrom pre-fills the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		DataFile:          cfg.General.DataFile,
		Sheet:             cfg.General.Sheet,
		Currency:          config.NormalizeCurrencyCode(cfg.Currency.Code),
		Theme:             cfg.Appearance.Theme,
		DefaultInvestment: formatAmount(cfg.Simulator.DefaultInvestment),
	}
	if g := cfg.Goals.MonthlyRevenue; g != nil {
		v.MonthlyRevenue = formatAmount(*g)
	}
	if c := cfg.Goals.MaxCAC; c != nil {
		v.MaxCAC = formatAmount(*c)
	}
	return v
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseAmount accepts plain numbers and amounts written in the configured
// currency ("R$ 1.500,00"). Text grouped by the thousand separator is read
// in that currency, so "1.500" is 1500 under BRL while "1250.5" stays a plain
// number. Empty input is not an amount.
func parseAmount(s string, cur config.CurrencyProfile) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	c := source.Cleaner{Symbol: cur.Symbol, Thousand: cur.Thousand, Decimal: cur.Decimal}
	if usesCurrencyFormat(s, cur) {
		return c.Clean(s)
	}
	if v, ok := source.ParsePlain(s); ok {
		return v, true
	}
	return c.Clean(s)
}

// usesCurrencyFormat reports whether s carries the currency symbol, a
// non-dot decimal separator, or thousand groups of exactly three digits.
func usesCurrencyFormat(s string, cur config.CurrencyProfile) bool {
	if cur.Symbol != "" && strings.Contains(s, cur.Symbol) {
		return true
	}
	if cur.Decimal != "" && cur.Decimal != "." && strings.Contains(s, cur.Decimal) {
		return true
	}
	if cur.Thousand == "" || !strings.Contains(s, cur.Thousand) {
		return false
	}

	intPart := strings.TrimPrefix(s, "-")
	if cur.Decimal != "" && cur.Decimal != cur.Thousand {
		intPart, _, _ = strings.Cut(intPart, cur.Decimal)
	}
	groups := strings.Split(intPart, cur.Thousand)
	for i, g := range groups {
		if g == "" || !allDigits(g) {
			return false
		}
		if (i == 0 && len(g) > 3) || (i > 0 && len(g) != 3) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateOptionalAmount(cur config.CurrencyProfile) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		v, ok := parseAmount(s, cur)
		if !ok || v < 0 {
			return errors.New("enter a positive amount or leave blank")
		}
		return nil
	}
}

func validateDataFile(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("data file is required")
	}
	return nil
}

func currencyOptions() []huh.Option[string] {
	codes := make([]string, 0, len(config.KnownCurrencies))
	for code := range config.KnownCurrencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	opts := make([]huh.Option[string], 0, len(codes))
	for _, code := range codes {
		p := config.KnownCurrencies[code]
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s 1%s234%s56", code, p.Symbol, p.Thousand, p.Decimal), code))
	}
	return opts
}

func themeOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		opts = append(opts, huh.NewOption(t.Name, t.Name))
	}
	return opts
}

// sheetOptions lists the workbook's sheets, or just "first sheet" when the
// file is missing or has no sheets (CSV).
func sheetOptions(path string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(first sheet)", "")}
	if _, err := os.Stat(path); err != nil {
		return opts
	}
	names, err := source.SheetNames(path)
	if err != nil {
		return opts
	}
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}
	return opts
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	cur := config.ResolveCurrency(config.CurrencyConfig{Code: vals.Currency})

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to salesdash!").
				Description("Point salesdash at your monthly sales workbook.\nColumns are matched by name, ignoring case and accents."),
			huh.NewInput().
				Title("Data file").
				Description("Path to the .xlsx or .csv file").
				Value(&vals.DataFile).
				Validate(validateDataFile),
			huh.NewSelect[string]().
				Title("Sheet").
				OptionsFunc(func() []huh.Option[string] { return sheetOptions(vals.DataFile) }, &vals.DataFile).
				Value(&vals.Sheet),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency").
				Description("How amounts are written in the sheet").
				Options(currencyOptions()...).
				Value(&vals.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions()...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Default simulator investment").
				Value(&vals.DefaultInvestment).
				Validate(validateOptionalAmount(cur)),
			huh.NewInput().
				Title("Monthly revenue goal").
				Description("Leave blank for none").
				Value(&vals.MonthlyRevenue).
				Validate(validateOptionalAmount(cur)),
			huh.NewInput().
				Title("Maximum CAC").
				Description("Leave blank for none").
				Value(&vals.MaxCAC).
				Validate(validateOptionalAmount(cur)),
		),
	).WithShowHelp(true)
}

// ApplySetup copies the form answers onto cfg.
func ApplySetup(cfg *config.Config, vals SetupValues) {
	cfg.General.DataFile = strings.TrimSpace(vals.DataFile)
	cfg.General.Sheet = vals.Sheet
	if vals.Currency != "" {
		cfg.Currency = config.CurrencyConfig{Code: vals.Currency}
	}
	if vals.Theme != "" {
		cfg.Appearance.Theme = vals.Theme
	}

	cur := config.ResolveCurrency(cfg.Currency)
	if v, ok := parseAmount(vals.DefaultInvestment, cur); ok {
		cfg.Simulator.DefaultInvestment = v
	}
	cfg.Goals.MonthlyRevenue = nil
	if v, ok := parseAmount(vals.MonthlyRevenue, cur); ok && v > 0 {
		cfg.Goals.MonthlyRevenue = &v
	}
	cfg.Goals.MaxCAC = nil
	if v, ok := parseAmount(vals.MaxCAC, cur); ok && v > 0 {
		cfg.Goals.MaxCAC = &v
	}
}
