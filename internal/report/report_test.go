package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
)

func sampleReport() Report {
	ch := "INVESTIMENTO META"
	return Report{
		Title:    "All months",
		Currency: config.KnownCurrencies["BRL"],
		Summary:  model.SummaryStats{Months: 2, Revenue: 3000, Investment: 600, ROAS: 5},
		Months: []model.MonthStats{
			{Month: "Jan", MonthID: 1, Revenue: 1000, Investment: 200},
			{Month: "Fev", MonthID: 2, Revenue: 2000, Investment: 400},
		},
		Channels: []model.ChannelStats{{Channel: ch, Investment: 600, SharePercent: 100, AttributedRevenue: 3000, ROAS: 5}},
		Rows: []model.Row{
			{Month: "Jan", MonthID: 1, Revenue: 1000, Line: 2, Investments: map[string]float64{ch: 200}},
			{Month: "Fev", MonthID: 2, Revenue: 2000, Line: 3, Investments: map[string]float64{ch: 400}},
		},
		Selected: []string{ch},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetMonthly, SheetChannels, SheetRows}, f.GetSheetList())

	label, err := f.GetCellValue(SheetSummary, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Revenue", label)

	raw, err := f.GetCellValue(SheetSummary, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3000", raw)

	month, err := f.GetCellValue(SheetMonthly, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Fev", month)

	channel, err := f.GetCellValue(SheetChannels, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Meta", channel)

	rows, err := f.GetRows(SheetRows)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "INVESTIMENTO META", rows[0][5])
}

func TestCharts(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	revenue := filepath.Join(dir, "revenue.png")
	require.NoError(t, RevenueChart(revenue, r.Months))
	info, err := os.Stat(revenue)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	channels := filepath.Join(dir, "channels.png")
	require.NoError(t, ChannelChart(channels, r.Channels))

	assert.Error(t, RevenueChart(filepath.Join(dir, "empty.png"), nil))
	assert.Error(t, ChannelChart(filepath.Join(dir, "empty.png"), nil))
}
