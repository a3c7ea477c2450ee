package tui

import (
	"math"
	"testing"

	"github.com/theirongolddev/salesdash/internal/config"
)

func TestParseAmount(t *testing.T) {
	brl := config.KnownCurrencies["BRL"]
	usd := config.KnownCurrencies["USD"]

	cases := []struct {
		in   string
		cur  config.CurrencyProfile
		want float64
	}{
		{"1.500", brl, 1500},
		{"1.500,00", brl, 1500},
		{"R$ 1.500", brl, 1500},
		{"12.000", brl, 12000},
		{"1.234.567,89", brl, 1234567.89},
		{"10000", brl, 10000},
		{"1250.5", brl, 1250.5},
		{"1.5", brl, 1.5},
		{"1,500", usd, 1500},
		{"1,500.25", usd, 1500.25},
		{"1.500", usd, 1.5},
		{"$ 2,000", usd, 2000},
	}
	for _, c := range cases {
		got, ok := parseAmount(c.in, c.cur)
		if !ok {
			t.Errorf("parseAmount(%q, %s) not ok", c.in, c.cur.Code)
			continue
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("parseAmount(%q, %s) = %v, want %v", c.in, c.cur.Code, got, c.want)
		}
	}

	for _, bad := range []string{"", "   ", "lots"} {
		if _, ok := parseAmount(bad, brl); ok {
			t.Errorf("parseAmount(%q) should fail", bad)
		}
	}
}
