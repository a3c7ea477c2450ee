package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents removes combining marks: "MÊS" -> "MES".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeader makes header comparison insensitive to case, accents and
// spacing: " Mês " and "MES" both become "MES".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToUpper(strings.Join(strings.Fields(foldAccents(h)), " "))
}

var investPrefixes = []string{"INVESTIMENTOS", "INVESTIMENTO", "INVESTMENTS", "INVESTMENT", "INVEST"}

// IsInvestmentHeader reports whether a header looks like a channel spend column.
func IsInvestmentHeader(h string) bool {
	return strings.HasPrefix(NormalizeHeader(h), "INVEST")
}

var titleCaser = cases.Title(language.BrazilianPortuguese)

// ChannelLabel derives a short display name from an investment header.
// e.g., "INVESTIMENTO GOOGLE ADS" -> "Google Ads", "Meta" -> "Meta"
func ChannelLabel(header string) string {
	norm := NormalizeHeader(header)
	trimmed := strings.TrimSpace(header)
	for _, p := range investPrefixes {
		if strings.HasPrefix(norm, p) {
			rest := strings.TrimLeft(norm[len(p):], " -_:/.")
			rest = strings.TrimPrefix(rest, "EM ")
			rest = strings.TrimPrefix(rest, "NO ")
			if rest == "" {
				return titleCaser.String(strings.ToLower(trimmed))
			}
			return titleCaser.String(strings.ToLower(rest))
		}
	}
	return trimmed
}
