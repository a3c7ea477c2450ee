package config

import "strings"

// CurrencyProfile describes how amounts in one currency are written.
type CurrencyProfile struct {
	Code     string
	Symbol   string
	Thousand string
	Decimal  string
}

// KnownCurrencies maps ISO codes to their usual written form.
var KnownCurrencies = map[string]CurrencyProfile{
	"BRL": {Code: "BRL", Symbol: "R$", Thousand: ".", Decimal: ","},
	"EUR": {Code: "EUR", Symbol: "€", Thousand: ".", Decimal: ","},
	"USD": {Code: "USD", Symbol: "$", Thousand: ",", Decimal: "."},
	"GBP": {Code: "GBP", Symbol: "£", Thousand: ",", Decimal: "."},
	"MXN": {Code: "MXN", Symbol: "$", Thousand: ",", Decimal: "."},
	"ARS": {Code: "ARS", Symbol: "$", Thousand: ".", Decimal: ","},
}

// NormalizeCurrencyCode upper-cases and trims an ISO code.
// e.g., " brl " -> "BRL"
func NormalizeCurrencyCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// LookupCurrency returns the profile for an ISO code.
// Returns the BRL profile and false if the code is unknown.
func LookupCurrency(code string) (CurrencyProfile, bool) {
	p, ok := KnownCurrencies[NormalizeCurrencyCode(code)]
	if !ok {
		return KnownCurrencies["BRL"], false
	}
	return p, true
}

// ResolveCurrency applies the user's overrides on top of the known profile for cfg.Code.
func ResolveCurrency(cfg CurrencyConfig) CurrencyProfile {
	p, ok := LookupCurrency(cfg.Code)
	if !ok && cfg.Code != "" {
		p.Code = NormalizeCurrencyCode(cfg.Code)
	}
	if cfg.Symbol != "" {
		p.Symbol = cfg.Symbol
	}
	if cfg.Thousand != "" {
		p.Thousand = cfg.Thousand
	}
	if cfg.Decimal != "" {
		p.Decimal = cfg.Decimal
	}
	return p
}
