// Package pipeline orchestrates workbook loading, caching, filtering and KPI aggregation.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
)

// Aggregate computes summary statistics over rows, counting spend only on
// the selected channels.
func Aggregate(rows []model.Row, channels []string) model.SummaryStats {
	var s model.SummaryStats
	revenues := make(stats.Float64Data, 0, len(rows))

	for _, r := range rows {
		s.Revenue += r.Revenue
		s.Customers += r.Customers
		s.Investment += r.Investment(channels)
		revenues = append(revenues, r.Revenue)
	}

	s.Months = len(AggregateMonths(rows, channels))
	if mean, err := revenues.Mean(); err == nil {
		s.AvgTicket = mean
	}
	s.ROAS = model.ROAS(s.Revenue, s.Investment)
	s.CAC = model.CAC(s.Investment, s.Customers)
	s.Profit = s.Revenue - s.Investment
	if s.Revenue != 0 {
		s.Margin = s.Profit / s.Revenue
	}
	if s.Customers != 0 {
		s.RevenuePerCustomer = s.Revenue / s.Customers
	}
	return s
}

// AggregateMonths groups rows by month, in chronological order. Rows with
// unrecognised month labels are grouped by label and listed last.
func AggregateMonths(rows []model.Row, channels []string) []model.MonthStats {
	byKey := make(map[string]*model.MonthStats)
	var order []string

	for _, r := range rows {
		key := monthKey(r)
		ms, ok := byKey[key]
		if !ok {
			ms = &model.MonthStats{Month: r.Month, MonthID: r.MonthID}
			byKey[key] = ms
			order = append(order, key)
		}
		ms.Revenue += r.Revenue
		ms.Customers += r.Customers
		ms.Investment += r.Investment(channels)
	}

	months := make([]model.MonthStats, 0, len(order))
	for _, key := range order {
		ms := byKey[key]
		ms.ROAS = model.ROAS(ms.Revenue, ms.Investment)
		ms.CAC = model.CAC(ms.Investment, ms.Customers)
		ms.Profit = ms.Revenue - ms.Investment
		months = append(months, *ms)
	}

	sort.SliceStable(months, func(i, j int) bool {
		a, b := months[i].MonthID, months[j].MonthID
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
	return months
}

// AggregateChannels computes per-channel spend, sorted by investment descending.
// Revenue is attributed to channels in proportion to each row's spend split.
func AggregateChannels(rows []model.Row, channels []string) []model.ChannelStats {
	out := make([]model.ChannelStats, len(channels))
	var total float64
	half := len(rows) / 2
	firstHalf := make([]float64, len(channels))
	secondHalf := make([]float64, len(channels))

	for i, ch := range channels {
		out[i].Channel = ch
	}

	for ri, r := range rows {
		rowInvest := r.Investment(channels)
		for i, ch := range channels {
			amount := r.Investments[ch]
			out[i].Investment += amount
			if rowInvest > 0 {
				out[i].AttributedRevenue += r.Revenue * amount / rowInvest
			}
			if ri < half {
				firstHalf[i] += amount
			} else {
				secondHalf[i] += amount
			}
		}
		total += rowInvest
	}

	for i := range out {
		if total > 0 {
			out[i].SharePercent = out[i].Investment / total * 100
		}
		out[i].ROAS = model.ROAS(out[i].AttributedRevenue, out[i].Investment)
		if half > 0 {
			switch {
			case secondHalf[i] > firstHalf[i]:
				out[i].TrendDirection = 1
			case secondHalf[i] < firstHalf[i]:
				out[i].TrendDirection = -1
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Investment > out[j].Investment
	})
	return out
}

// FilterByMonths keeps rows whose month matches one of labels. Labels may be
// month names or numbers. An empty selection keeps every row.
func FilterByMonths(rows []model.Row, labels []string) []model.Row {
	if len(labels) == 0 {
		return rows
	}

	ids := make(map[int]struct{})
	names := make(map[string]struct{})
	for _, l := range labels {
		if id, ok := source.ParseMonth(l); ok {
			ids[id] = struct{}{}
		} else {
			names[source.NormalizeHeader(l)] = struct{}{}
		}
	}

	var out []model.Row
	for _, r := range rows {
		if r.MonthID != 0 {
			if _, ok := ids[r.MonthID]; ok {
				out = append(out, r)
			}
			continue
		}
		if _, ok := names[source.NormalizeHeader(r.Month)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterByRange keeps rows whose month ordinal is within [from, to].
// A zero bound is open; rows with unknown months only pass when both are open.
func FilterByRange(rows []model.Row, from, to int) []model.Row {
	if from == 0 && to == 0 {
		return rows
	}
	var out []model.Row
	for _, r := range rows {
		if r.MonthID == 0 {
			continue
		}
		if from != 0 && r.MonthID < from {
			continue
		}
		if to != 0 && r.MonthID > to {
			continue
		}
		out = append(out, r)
	}
	return out
}

// PreviousRange returns the window of the same length ending just before from.
// ok is false when the range is open or the window would start before January.
func PreviousRange(from, to int) (prevFrom, prevTo int, ok bool) {
	if from < 1 || to < from {
		return 0, 0, false
	}
	n := to - from + 1
	prevFrom, prevTo = from-n, from-1
	if prevFrom < 1 {
		return 0, 0, false
	}
	return prevFrom, prevTo, true
}

// Compare aggregates the [from, to] range and the window before it.
func Compare(rows []model.Row, channels []string, from, to int) model.PeriodComparison {
	cmp := model.PeriodComparison{
		Current: Aggregate(FilterByRange(rows, from, to), channels),
	}
	if pf, pt, ok := PreviousRange(from, to); ok {
		prev := FilterByRange(rows, pf, pt)
		if len(prev) > 0 {
			cmp.Previous = Aggregate(prev, channels)
			cmp.HasPrevious = true
		}
	}
	return cmp
}

// SelectChannels resolves user-supplied channel names against the sheet's
// investment headers. Names match the header or its short label, ignoring
// case and accents. An empty request selects every channel.
func SelectChannels(all, wanted []string) ([]string, error) {
	if len(wanted) == 0 {
		return append([]string(nil), all...), nil
	}

	var out []string
	for _, w := range wanted {
		key := source.NormalizeHeader(w)
		if key == "" {
			continue
		}
		found := false
		for _, ch := range all {
			if source.NormalizeHeader(ch) == key || source.NormalizeHeader(source.ChannelLabel(ch)) == key {
				if !containsString(out, ch) {
					out = append(out, ch)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown channel %q (have %s)", w, strings.Join(channelLabels(all), ", "))
		}
	}
	return out, nil
}

// Describe summarises a series of values; an empty series yields zeros.
func Describe(values []float64) model.Distribution {
	data := stats.Float64Data(values)
	if data.Len() == 0 {
		return model.Distribution{}
	}
	var d model.Distribution
	d.Mean, _ = data.Mean()
	d.Median, _ = data.Median()
	d.Min, _ = data.Min()
	d.Max, _ = data.Max()
	d.StdDev, _ = data.StandardDeviation()
	return d
}

// MonthlyRevenue extracts the revenue series from month stats.
func MonthlyRevenue(months []model.MonthStats) []float64 {
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = m.Revenue
	}
	return out
}

func monthKey(r model.Row) string {
	if r.MonthID != 0 {
		return fmt.Sprintf("#%d", r.MonthID)
	}
	return source.NormalizeHeader(r.Month)
}

func channelLabels(all []string) []string {
	out := make([]string, len(all))
	for i, ch := range all {
		out[i] = source.ChannelLabel(ch)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
