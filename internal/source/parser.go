// Package source reads sales workbooks and cleans them into typed rows.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/salesdash/internal/model"
)

// ParseResult holds the cleaned rows of one sheet.
type ParseResult struct {
	Rows     []model.Row
	Columns  Columns
	Channels []string // investment headers in sheet order
	Reports  []ColumnReport
}

// Failures totals the cells that could not be parsed across all value columns.
func (r ParseResult) Failures() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Failures
	}
	return n
}

// Cleaned totals the cells that went through the currency cleaner.
func (r ParseResult) Cleaned() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Cleaned
	}
	return n
}

// Parse resolves the configured columns and converts every record to a row,
// sorted chronologically by month. Rows with unknown months keep their sheet
// order after the known ones.
//
// Workbook cells stored as text go through the currency cleaner and numeric
// cells are taken as stored. For CSV, a value column is taken as plain numbers
// when every non-empty cell parses as one; otherwise the whole column goes
// through the cleaner. Cells that still fail become 0.
func Parse(raw RawSheet, opts Options) (ParseResult, error) {
	cols, err := ResolveColumns(raw.Headers, opts)
	if err != nil {
		return ParseResult{}, err
	}

	cleaner := opts.Cleaner
	if cleaner == (Cleaner{}) {
		cleaner = DefaultCleaner
	}

	res := ParseResult{Columns: cols}
	for _, ch := range cols.Channels {
		res.Channels = append(res.Channels, ch.Header)
	}

	revenue, rep := parseColumn(raw, cols.Revenue, cleaner)
	res.Reports = append(res.Reports, rep)

	var customers []float64
	if cols.Customers >= 0 {
		customers, rep = parseColumn(raw, cols.Customers, cleaner)
		res.Reports = append(res.Reports, rep)
	}

	spend := make([][]float64, len(cols.Channels))
	for i, ch := range cols.Channels {
		spend[i], rep = parseColumn(raw, ch.Index, cleaner)
		res.Reports = append(res.Reports, rep)
	}

	res.Rows = make([]model.Row, len(raw.Records))
	for i, rec := range raw.Records {
		month := strings.TrimSpace(cell(rec, cols.Month))
		id := MonthToOrdinal(month)
		if id == 0 {
			id, _ = ParseMonth(month)
		}

		row := model.Row{
			Month:       month,
			MonthID:     id,
			Revenue:     revenue[i],
			Investments: make(map[string]float64, len(cols.Channels)),
			Line:        lineOf(raw, i),
		}
		if customers != nil {
			row.Customers = customers[i]
		}
		for j, ch := range cols.Channels {
			row.Investments[ch.Header] = spend[j][i]
		}
		res.Rows[i] = row
	}

	SortChronological(res.Rows)
	return res, nil
}

// SortChronological orders rows by month ordinal, unknown months last.
func SortChronological(rows []model.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].MonthID, rows[j].MonthID
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
}

// ResolveColumns finds the configured headers. Month and revenue are required;
// a missing customers column leaves Customers at -1.
func ResolveColumns(headers []string, opts Options) (Columns, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	find := func(name string) int {
		if i, ok := index[NormalizeHeader(name)]; ok {
			return i
		}
		return -1
	}

	cols := Columns{
		Month:     find(opts.MonthColumn),
		Revenue:   find(opts.RevenueColumn),
		Customers: find(opts.CustomersColumn),
	}
	if cols.Month < 0 {
		return cols, fmt.Errorf("%w: %q", ErrMissingColumn, opts.MonthColumn)
	}
	if cols.Revenue < 0 {
		return cols, fmt.Errorf("%w: %q", ErrMissingColumn, opts.RevenueColumn)
	}

	if len(opts.Channels) > 0 {
		for _, name := range opts.Channels {
			i := find(name)
			if i < 0 {
				return cols, fmt.Errorf("%w: channel %q", ErrMissingColumn, name)
			}
			cols.Channels = append(cols.Channels, ChannelColumn{Header: headers[i], Label: ChannelLabel(headers[i]), Index: i})
		}
		return cols, nil
	}

	for i, h := range headers {
		if h == "" || i == cols.Revenue || i == cols.Customers || i == cols.Month {
			continue
		}
		if IsInvestmentHeader(h) {
			cols.Channels = append(cols.Channels, ChannelColumn{Header: h, Label: ChannelLabel(h), Index: i})
		}
	}
	return cols, nil
}

func parseColumn(raw RawSheet, idx int, c Cleaner) ([]float64, ColumnReport) {
	if raw.Text != nil {
		return parseTypedColumn(raw, idx, c)
	}

	rep := ColumnReport{Header: raw.Headers[idx], Numeric: true}
	for _, rec := range raw.Records {
		v := strings.TrimSpace(cell(rec, idx))
		if v == "" {
			continue
		}
		if _, ok := ParsePlain(v); !ok {
			rep.Numeric = false
			break
		}
	}

	out := make([]float64, len(raw.Records))
	for i, rec := range raw.Records {
		v := cell(rec, idx)
		if rep.Numeric {
			out[i], _ = ParsePlain(v)
			continue
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		rep.Cleaned++
		f, ok := c.Clean(v)
		if !ok {
			rep.Failures++
		}
		out[i] = f
	}
	return out, rep
}

// parseTypedColumn handles workbook columns, where each cell knows its type:
// string cells go through the currency cleaner ("1.500" is 1500 under BRL),
// numeric cells are taken as stored.
func parseTypedColumn(raw RawSheet, idx int, c Cleaner) ([]float64, ColumnReport) {
	rep := ColumnReport{Header: raw.Headers[idx], Numeric: true}
	out := make([]float64, len(raw.Records))
	for i, rec := range raw.Records {
		v := cell(rec, idx)
		if strings.TrimSpace(v) == "" {
			continue
		}
		var (
			f  float64
			ok bool
		)
		if raw.IsText(i, idx) {
			rep.Numeric = false
			rep.Cleaned++
			f, ok = c.Clean(v)
		} else {
			f, ok = ParsePlain(v)
		}
		if !ok {
			rep.Failures++
		}
		out[i] = f
	}
	return out, rep
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func lineOf(raw RawSheet, i int) int {
	if i < len(raw.Lines) {
		return raw.Lines[i]
	}
	return i + 2
}
