// Package model defines domain types for salesdash rows and KPIs.
package model

// Row is one cleaned spreadsheet line: a month of sales and marketing spend.
type Row struct {
	Month       string
	MonthID     int // 1..12, 0 when the label is not a known month
	Revenue     float64
	Customers   float64
	Investments map[string]float64 // keyed by channel column header
	Line        int                // 1-based line in the source sheet
}

// Investment sums the row's spend over the given channels.
// Channels missing from the row count as zero.
func (r Row) Investment(channels []string) float64 {
	var total float64
	for _, ch := range channels {
		total += r.Investments[ch]
	}
	return total
}

// ROAS returns revenue over investment, or 0 when investment is 0.
func ROAS(revenue, investment float64) float64 {
	if investment == 0 {
		return 0
	}
	return revenue / investment
}

// CAC returns investment over customers, or 0 when customers is 0.
func CAC(investment, customers float64) float64 {
	if customers == 0 {
		return 0
	}
	return investment / customers
}
