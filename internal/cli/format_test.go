package cli

import (
	"testing"

	"github.com/theirongolddev/salesdash/internal/config"
)

func withCurrency(t *testing.T, code string) {
	t.Helper()
	prev := ActiveCurrency()
	p, _ := config.LookupCurrency(code)
	SetCurrency(p)
	t.Cleanup(func() { SetCurrency(prev) })
}

func TestFormatMoney_BRL(t *testing.T) {
	withCurrency(t, "BRL")

	tests := map[float64]string{
		1234.56:  "R$ 1.234,56",
		0:        "R$ 0,00",
		-500:     "-R$ 500,00",
		1000000:  "R$ 1.000.000,00",
		0.004:    "R$ 0,00",
		99.999:   "R$ 100,00",
	}
	for in, want := range tests {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney_USD(t *testing.T) {
	withCurrency(t, "USD")
	if got := FormatMoney(1234.5); got != "$1,234.50" {
		t.Errorf("FormatMoney = %q, want $1,234.50", got)
	}
}

func TestFormatMoneyShort(t *testing.T) {
	withCurrency(t, "BRL")
	tests := map[float64]string{
		950:      "R$ 950",
		1234:     "R$ 1.234",
		12345:    "R$ 12,3K",
		1234567:  "R$ 1,2M",
		-2500000: "-R$ 2,5M",
	}
	for in, want := range tests {
		if got := FormatMoneyShort(in); got != want {
			t.Errorf("FormatMoneyShort(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRatioAndPercent(t *testing.T) {
	withCurrency(t, "BRL")
	if got := FormatRatio(10.0 / 3.0); got != "3,33x" {
		t.Errorf("FormatRatio = %q", got)
	}
	if got := FormatPercent(0.125); got != "12,5%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatChange(120, 100); got != "+20,0%" {
		t.Errorf("FormatChange = %q", got)
	}
	if got := FormatChange(1, 0); got != "" {
		t.Errorf("FormatChange with zero previous = %q, want empty", got)
	}
}

func TestFormatNumber(t *testing.T) {
	withCurrency(t, "USD")
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatCount(-1499.6); got != "-1,500" {
		t.Errorf("FormatCount = %q", got)
	}
}
