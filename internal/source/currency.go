package source

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Cleaner turns currency-formatted text into numbers.
type Cleaner struct {
	Symbol   string
	Thousand string
	Decimal  string
}

// DefaultCleaner handles Brazilian real amounts such as "R$ 1.234,56".
var DefaultCleaner = Cleaner{Symbol: "R$", Thousand: ".", Decimal: ","}

// CleanCurrency parses a Brazilian currency string, returning 0 when it cannot.
// e.g., "R$ 1.234,56" -> 1234.56
func CleanCurrency(text string) float64 {
	v, _ := DefaultCleaner.Clean(text)
	return v
}

// Clean strips the symbol, drops thousand separators and converts the decimal
// separator before parsing. ok is false when the remainder is not a number.
func (c Cleaner) Clean(text string) (float64, bool) {
	s := text
	if c.Symbol != "" {
		s = strings.ReplaceAll(s, c.Symbol, "")
	}
	if c.Thousand != "" {
		s = strings.ReplaceAll(s, c.Thousand, "")
	}
	if c.Decimal != "" && c.Decimal != "." {
		s = strings.ReplaceAll(s, c.Decimal, ".")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParsePlain parses a cell that is already a plain number, such as a raw
// numeric spreadsheet value ("1234.5" or "1.2E+3").
func ParsePlain(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
