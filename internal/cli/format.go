// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"

	"github.com/theirongolddev/salesdash/internal/config"
)

var active = config.KnownCurrencies["BRL"]

func init() {
	SetCurrency(active)
}

// SetCurrency switches money formatting to the given profile. It registers
// the profile with go-money, so call it once at startup.
func SetCurrency(p config.CurrencyProfile) {
	fraction := 2
	if cur := money.GetCurrency(p.Code); cur != nil {
		fraction = cur.Fraction
	}
	grapheme := p.Symbol
	if utf8.RuneCountInString(grapheme) > 1 {
		grapheme += " "
	}
	money.AddCurrency(p.Code, grapheme, "$1", p.Decimal, p.Thousand, fraction)
	active = p
}

// ActiveCurrency returns the profile used for formatting.
func ActiveCurrency() config.CurrencyProfile {
	return active
}

// FormatMoney formats an amount in the active currency.
// e.g., 1234.56 -> "R$ 1.234,56", -500 -> "-R$ 500,00"
func FormatMoney(v float64) string {
	cur := money.GetCurrency(active.Code)
	if cur == nil {
		return fmt.Sprintf("%s %.2f", active.Symbol, v)
	}
	units := int64(math.Round(math.Abs(v) * math.Pow10(cur.Fraction)))
	s := money.New(units, active.Code).Display()
	if v < 0 && units != 0 {
		return "-" + s
	}
	return s
}

// FormatMoneyShort formats an amount with K/M suffixes for narrow cards.
// e.g., 1234567 -> "R$ 1,2M", 950 -> "R$ 950"
func FormatMoneyShort(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	sym := active.Symbol
	if utf8.RuneCountInString(sym) > 1 {
		sym += " "
	}

	var body string
	switch {
	case v >= 1_000_000_000:
		body = formatFixed(v/1_000_000_000, 1) + "B"
	case v >= 1_000_000:
		body = formatFixed(v/1_000_000, 1) + "M"
	case v >= 10_000:
		body = formatFixed(v/1_000, 1) + "K"
	default:
		body = FormatNumber(int64(math.Round(v)))
	}
	return sign + sym + body
}

// FormatNumber adds thousand separators to an integer.
// e.g., 1234567 -> "1.234.567" for BRL
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteString(active.Thousand)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatCount formats a customer count, rounding fractional values.
func FormatCount(f float64) string {
	return FormatNumber(int64(math.Round(f)))
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return formatFixed(f*100, 1) + "%"
}

// FormatRatio formats a ROAS-style multiple.
// e.g., 3.333 -> "3,33x"
func FormatRatio(f float64) string {
	return formatFixed(f, 2) + "x"
}

// FormatDelta formats a money delta with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoneyShort(delta)
	}
	return FormatMoneyShort(delta)
}

// FormatChange formats the relative change between two values.
// Returns "" when there is no previous value to compare against.
func FormatChange(current, previous float64) string {
	if previous == 0 {
		return ""
	}
	pct := (current - previous) / math.Abs(previous)
	if pct >= 0 {
		return "+" + FormatPercent(pct)
	}
	return FormatPercent(pct)
}

func formatFixed(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if active.Decimal != "." {
		s = strings.Replace(s, ".", active.Decimal, 1)
	}
	return s
}
