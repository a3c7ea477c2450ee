package pipeline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
)

const (
	meta   = "INVESTIMENTO META"
	google = "INVESTIMENTO GOOGLE"
)

var both = []string{meta, google}

func sampleRows() []model.Row {
	return []model.Row{
		{Month: "Jan", MonthID: 1, Revenue: 1000, Customers: 10, Investments: map[string]float64{meta: 200, google: 300}},
		{Month: "Fev", MonthID: 2, Revenue: 2000, Customers: 20, Investments: map[string]float64{meta: 400, google: 100}},
		{Month: "Mar", MonthID: 3, Revenue: 3000, Customers: 0, Investments: map[string]float64{meta: 0, google: 0}},
		{Month: "Abr", MonthID: 4, Revenue: 4000, Customers: 40, Investments: map[string]float64{meta: 1000, google: 1000}},
	}
}

func months(rows []model.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Month
	}
	return out
}

func TestAggregate_AllChannels(t *testing.T) {
	s := Aggregate(sampleRows(), both)

	assert.Equal(t, 4, s.Months)
	assert.InDelta(t, 10000.0, s.Revenue, 1e-9)
	assert.InDelta(t, 70.0, s.Customers, 1e-9)
	assert.InDelta(t, 3000.0, s.Investment, 1e-9)
	assert.InDelta(t, 10000.0/3000.0, s.ROAS, 1e-9)
	assert.InDelta(t, 3000.0/70.0, s.CAC, 1e-9)
	assert.InDelta(t, 7000.0, s.Profit, 1e-9)
	assert.InDelta(t, 0.7, s.Margin, 1e-9)
	assert.InDelta(t, 2500.0, s.AvgTicket, 1e-9)
}

func TestAggregate_SelectedChannelOnly(t *testing.T) {
	s := Aggregate(sampleRows(), []string{meta})
	assert.InDelta(t, 1600.0, s.Investment, 1e-9)
	assert.InDelta(t, 6.25, s.ROAS, 1e-9)
}

func TestAggregate_ZeroDivisionGuards(t *testing.T) {
	s := Aggregate(sampleRows(), nil)
	assert.Zero(t, s.Investment)
	assert.Zero(t, s.ROAS)
	assert.Zero(t, s.CAC)

	march := Aggregate(sampleRows()[2:3], both)
	assert.Zero(t, march.ROAS)
	assert.Zero(t, march.CAC)

	empty := Aggregate(nil, both)
	assert.Equal(t, model.SummaryStats{}, empty)
}

func TestAggregateMonths_MergesAndOrders(t *testing.T) {
	rows := append(sampleRows(),
		model.Row{Month: "Total", MonthID: 0, Revenue: 1},
		model.Row{Month: "janeiro", MonthID: 1, Revenue: 500, Investments: map[string]float64{meta: 500}},
	)
	ms := AggregateMonths(rows, both)
	require.Len(t, ms, 5)
	assert.Equal(t, "Jan", ms[0].Month)
	assert.InDelta(t, 1500.0, ms[0].Revenue, 1e-9)
	assert.InDelta(t, 1000.0, ms[0].Investment, 1e-9)
	assert.InDelta(t, 1.5, ms[0].ROAS, 1e-9)
	assert.Equal(t, "Total", ms[4].Month)
}

func TestAggregateChannels(t *testing.T) {
	chs := AggregateChannels(sampleRows(), both)
	require.Len(t, chs, 2)

	assert.Equal(t, meta, chs[0].Channel)
	assert.InDelta(t, 1600.0, chs[0].Investment, 1e-9)
	assert.InDelta(t, 1600.0/3000.0*100, chs[0].SharePercent, 1e-9)
	assert.InDelta(t, 4000.0, chs[0].AttributedRevenue, 1e-9)
	assert.InDelta(t, 2.5, chs[0].ROAS, 1e-9)
	assert.Equal(t, 1, chs[0].TrendDirection)

	assert.Equal(t, google, chs[1].Channel)
	assert.InDelta(t, 3000.0, chs[1].AttributedRevenue, 1e-9)
}

func TestFilterByMonths(t *testing.T) {
	rows := sampleRows()
	assert.Len(t, FilterByMonths(rows, nil), 4, "empty selection keeps everything")

	got := months(FilterByMonths(rows, []string{"jan", "3"}))
	if diff := cmp.Diff([]string{"Jan", "Mar"}, got); diff != "" {
		t.Errorf("FilterByMonths (-want +got):\n%s", diff)
	}

	withTotal := append(rows, model.Row{Month: "Total"})
	got = months(FilterByMonths(withTotal, []string{"total"}))
	assert.Equal(t, []string{"Total"}, got)
}

func TestFilterByRange(t *testing.T) {
	rows := append(sampleRows(), model.Row{Month: "Total"})

	assert.Equal(t, []string{"Fev", "Mar"}, months(FilterByRange(rows, 2, 3)))
	assert.Equal(t, []string{"Jan", "Fev"}, months(FilterByRange(rows, 0, 2)))
	assert.Equal(t, []string{"Mar", "Abr"}, months(FilterByRange(rows, 3, 0)))
	assert.Len(t, FilterByRange(rows, 0, 0), 5)
}

func TestPreviousRange(t *testing.T) {
	from, to, ok := PreviousRange(3, 4)
	assert.True(t, ok)
	assert.Equal(t, 1, from)
	assert.Equal(t, 2, to)

	_, _, ok = PreviousRange(2, 4)
	assert.False(t, ok)

	_, _, ok = PreviousRange(0, 4)
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	c := Compare(sampleRows(), both, 3, 4)
	assert.True(t, c.HasPrevious)
	assert.InDelta(t, 7000.0, c.Current.Revenue, 1e-9)
	assert.InDelta(t, 3000.0, c.Previous.Revenue, 1e-9)

	c = Compare(sampleRows(), both, 1, 4)
	assert.False(t, c.HasPrevious)
}

func TestSelectChannels(t *testing.T) {
	all := []string{"INVESTIMENTO META", "INVESTIMENTO GOOGLE ADS"}

	got, err := SelectChannels(all, []string{"google ads"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INVESTIMENTO GOOGLE ADS"}, got)

	got, err = SelectChannels(all, []string{"meta", "INVESTIMENTO META"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INVESTIMENTO META"}, got)

	got, err = SelectChannels(all, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	_, err = SelectChannels(all, []string{"tv"})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, d.Mean, 1e-9)
	assert.InDelta(t, 2.5, d.Median, 1e-9)
	assert.InDelta(t, 1.0, d.Min, 1e-9)
	assert.InDelta(t, 4.0, d.Max, 1e-9)
	assert.InDelta(t, math.Sqrt(1.25), d.StdDev, 1e-9)

	assert.Equal(t, model.Distribution{}, Describe(nil))
}

func TestSimulate(t *testing.T) {
	assert.InDelta(t, 2500.0, Simulate(2.5, 1000), 1e-9)
	assert.Zero(t, Simulate(0, 1000))

	assert.InDelta(t, 10000.0/3000.0, AverageROAS(sampleRows(), both), 1e-9)

	p := Project(sampleRows(), []string{meta}, 1000)
	assert.InDelta(t, 6.25, p.AvgROAS, 1e-9)
	assert.InDelta(t, 6250.0, p.ProjectedRevenue, 1e-9)
	assert.InDelta(t, 5250.0, p.ProjectedProfit, 1e-9)
}

func TestParseInvestment(t *testing.T) {
	f, err := ParseInvestment(" 1250.5 ")
	require.NoError(t, err)
	assert.InDelta(t, 1250.5, f, 1e-9)

	f, err = ParseInvestment("0")
	require.NoError(t, err)
	assert.Zero(t, f)

	for _, raw := range []string{"", "lots", "-1", "NaN", "nan", "Inf", "+Inf", "-Inf", "1e400"} {
		_, err := ParseInvestment(raw)
		assert.Error(t, err, raw)
	}

	assert.Error(t, CheckInvestment(math.NaN()))
	assert.Error(t, CheckInvestment(math.Inf(1)))
	assert.NoError(t, CheckInvestment(0))
}

func TestForecast(t *testing.T) {
	f := Forecast(AggregateMonths(sampleRows(), both))
	require.True(t, f.Valid)
	assert.Equal(t, 5, f.NextMonthID)
	assert.InDelta(t, 5000.0, f.Revenue, 1e-6)
	assert.InDelta(t, 1000.0, f.Slope, 1e-6)
	assert.InDelta(t, 1.0, f.RSquared, 1e-9)

	single := Forecast([]model.MonthStats{{MonthID: 1, Revenue: 10}})
	assert.False(t, single.Valid)

	wrap := Forecast([]model.MonthStats{{MonthID: 11, Revenue: 10}, {MonthID: 12, Revenue: 20}})
	assert.Equal(t, 1, wrap.NextMonthID)
}

func TestGoals(t *testing.T) {
	rows := sampleRows()
	ms := AggregateMonths(rows, both)
	sum := Aggregate(rows, both)
	target, maxCAC := 2500.0, 40.0

	g := Goals(ms, sum, config.GoalsConfig{MonthlyRevenue: &target, MaxCAC: &maxCAC})
	assert.InDelta(t, 2500.0, g.AvgMonthlyRevenue, 1e-9)
	assert.InDelta(t, 1.0, g.RevenueProgress, 1e-9)
	assert.Equal(t, 2, g.MonthsOnTarget)
	assert.False(t, g.CACWithinLimit)

	none := Goals(ms, sum, config.GoalsConfig{})
	assert.True(t, none.CACWithinLimit)
	assert.Zero(t, none.RevenueProgress)
}
