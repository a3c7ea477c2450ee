package pipeline

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
)

// Query is a filter selection over loaded rows, shared by the CLI flags,
// the dashboard widgets and the HTTP query string.
type Query struct {
	Months   []string // month multiselect; empty = all months
	From, To int      // month range slider; 0 = open bound
	Channels []string // channel checkboxes; empty = all channels
}

// View is the result of applying a Query to a load result.
type View struct {
	Rows     []model.Row
	Channels []string // resolved channel headers
	Query    Query
}

// Apply filters rows by month selection and range, and resolves channels.
func Apply(res *LoadResult, q Query) (View, error) {
	channels, err := SelectChannels(res.Channels, q.Channels)
	if err != nil {
		return View{}, err
	}
	if q.From != 0 && q.To != 0 && q.From > q.To {
		q.From, q.To = q.To, q.From
	}
	rows := FilterByRange(FilterByMonths(res.Rows, q.Months), q.From, q.To)
	return View{Rows: rows, Channels: channels, Query: q}, nil
}

// ParseBound parses a --from/--to value. Empty input is an open bound.
func ParseBound(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	id, ok := source.ParseMonth(s)
	if !ok {
		return 0, fmt.Errorf("invalid month %q: use a name like \"mar\" or a number 1-12", s)
	}
	return id, nil
}

// SplitList splits comma-separated values, dropping empty items.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// OptionsFromConfig builds load options from the user's configuration.
func OptionsFromConfig(cfg config.Config) Options {
	cur := config.ResolveCurrency(cfg.Currency)
	return Options{
		Sheet: cfg.General.Sheet,
		Source: source.Options{
			MonthColumn:     cfg.Columns.Month,
			RevenueColumn:   cfg.Columns.Revenue,
			CustomersColumn: cfg.Columns.Customers,
			Channels:        cfg.Columns.Channels,
			Cleaner: source.Cleaner{
				Symbol:   cur.Symbol,
				Thousand: cur.Thousand,
				Decimal:  cur.Decimal,
			},
		},
	}
}
