package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$1.000.000", 1000000},
		{" R$ 12,5 ", 12.5},
		{"R$ 1.234,56", 1234.56},
		{"-R$ 500,50", -500.5},
		{"1000", 1000},
		{"R$ 0,00", 0},
		{"", 0},
		{"abc", 0},
		{"R$ -", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CleanCurrency(tt.in), 1e-9, "CleanCurrency(%q)", tt.in)
	}
}

func TestCleaner_ReportsFailure(t *testing.T) {
	_, ok := DefaultCleaner.Clean("n/a")
	assert.False(t, ok)

	v, ok := DefaultCleaner.Clean("R$ 10,00")
	assert.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestCleaner_DotDecimalLocale(t *testing.T) {
	usd := Cleaner{Symbol: "$", Thousand: ",", Decimal: "."}
	v, ok := usd.Clean("$1,234.56")
	assert.True(t, ok)
	assert.InDelta(t, 1234.56, v, 1e-9)
}

func TestParsePlain(t *testing.T) {
	v, ok := ParsePlain("1.2E+3")
	assert.True(t, ok)
	assert.InDelta(t, 1200.0, v, 1e-9)

	_, ok = ParsePlain("R$ 10")
	assert.False(t, ok)

	_, ok = ParsePlain("   ")
	assert.False(t, ok)
}
