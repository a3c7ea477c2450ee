package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthToOrdinal(t *testing.T) {
	tests := map[string]int{
		"Janeiro":      1,
		" fevereiro ":  2,
		"MARÇO":        3,
		"abril":        4,
		"Mai":          5,
		"jun":          6,
		"Julho":        7,
		"agosto":       8,
		"set":          9,
		"Outubro":      10,
		"NOV":          11,
		"dezembro":     12,
		"Foo":          0,
		"":             0,
		"ja":           0,
		"January 2024": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, MonthToOrdinal(in), "MonthToOrdinal(%q)", in)
	}
}

func TestParseMonth(t *testing.T) {
	id, ok := ParseMonth("3")
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = ParseMonth("13")
	assert.False(t, ok)

	id, ok = ParseMonth("Ago")
	assert.True(t, ok)
	assert.Equal(t, 8, id)

	id, ok = ParseMonth("4.0")
	assert.True(t, ok)
	assert.Equal(t, 4, id)

	_, ok = ParseMonth("xyz")
	assert.False(t, ok)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Set", MonthLabel(9))
	assert.Equal(t, "?", MonthLabel(0))
	assert.Equal(t, "?", MonthLabel(13))
}

func TestChannelLabel(t *testing.T) {
	assert.Equal(t, "Google Ads", ChannelLabel("INVESTIMENTO GOOGLE ADS"))
	assert.Equal(t, "Meta", ChannelLabel("Investimento em Meta"))
	assert.Equal(t, "Tiktok", ChannelLabel("Invest. TikTok"))
	assert.Equal(t, "Radio", ChannelLabel("Radio"))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "MES", NormalizeHeader("  Mês "))
	assert.Equal(t, "QUANTIDADE DE CLIENTES", NormalizeHeader("quantidade  de clientes"))
	assert.Equal(t, "VENDAS", NormalizeHeader("\ufeffVendas"))
}
