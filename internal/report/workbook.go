// Package report writes KPI reports as xlsx workbooks and PNG charts.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
)

// Sheet names in the generated workbook.
const (
	SheetSummary  = "Summary"
	SheetMonthly  = "Monthly"
	SheetChannels = "Channels"
	SheetRows     = "Rows"
)

// Report is everything one export contains.
type Report struct {
	Title    string
	Currency config.CurrencyProfile
	Summary  model.SummaryStats
	Months   []model.MonthStats
	Channels []model.ChannelStats
	Rows     []model.Row
	Selected []string // channel headers counted as investment, in column order
}

// WriteWorkbook saves r as an xlsx file with one sheet per view and a
// revenue line chart on the monthly sheet.
func WriteWorkbook(path string, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetChannels, SheetRows} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	styles, err := newStyles(f, r.Currency)
	if err != nil {
		return err
	}

	steps := []func(*excelize.File, Report, styleSet) error{
		writeSummary, writeMonthly, writeChannels, writeRows,
	}
	for _, step := range steps {
		if err := step(f, r, styles); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

type styleSet struct {
	header int
	money  int
	ratio  int
	pct    int
	count  int
}

func newStyles(f *excelize.File, cur config.CurrencyProfile) (styleSet, error) {
	var s styleSet
	var err error

	moneyFmt := fmt.Sprintf(`"%s "#,##0.00`, cur.Symbol)
	ratioFmt := `0.00"x"`

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("creating header style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("creating money style: %w", err)
	}
	if s.ratio, err = f.NewStyle(&excelize.Style{CustomNumFmt: &ratioFmt}); err != nil {
		return s, fmt.Errorf("creating ratio style: %w", err)
	}
	if s.pct, err = f.NewStyle(&excelize.Style{NumFmt: 10}); err != nil {
		return s, fmt.Errorf("creating percent style: %w", err)
	}
	if s.count, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil {
		return s, fmt.Errorf("creating count style: %w", err)
	}
	return s, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, ref, &values)
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, ref, ref, style)
}

func styleColumn(f *excelize.File, sheet string, col, firstRow, lastRow, style int) error {
	if lastRow < firstRow {
		return nil
	}
	top, err := excelize.CoordinatesToCellName(col, firstRow)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(col, lastRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, top, bottom, style)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	end, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", end, 16)
}

func writeSummary(f *excelize.File, r Report, st styleSet) error {
	s := r.Summary
	type line struct {
		label string
		value float64
		style int
	}
	lines := []line{
		{"Months", float64(s.Months), st.count},
		{"Revenue", s.Revenue, st.money},
		{"Avg Ticket", s.AvgTicket, st.money},
		{"Customers", s.Customers, st.count},
		{"Revenue/Customer", s.RevenuePerCustomer, st.money},
		{"Investment", s.Investment, st.money},
		{"ROAS", s.ROAS, st.ratio},
		{"CAC", s.CAC, st.money},
		{"Profit", s.Profit, st.money},
		{"Margin", s.Margin, st.pct},
	}

	if err := writeHeader(f, SheetSummary, []string{"Metric", "Value"}, st.header); err != nil {
		return err
	}
	for i, l := range lines {
		row := i + 2
		if err := setRow(f, SheetSummary, row, []interface{}{l.label, l.value}); err != nil {
			return err
		}
		if err := styleCell(f, SheetSummary, 2, row, l.style); err != nil {
			return err
		}
	}
	if r.Title != "" {
		return f.SetCellValue(SheetSummary, "D1", r.Title)
	}
	return nil
}

func writeMonthly(f *excelize.File, r Report, st styleSet) error {
	headers := []string{"Month", "Revenue", "Customers", "Investment", "ROAS", "CAC", "Profit"}
	if err := writeHeader(f, SheetMonthly, headers, st.header); err != nil {
		return err
	}
	for i, m := range r.Months {
		values := []interface{}{m.Month, m.Revenue, m.Customers, m.Investment, m.ROAS, m.CAC, m.Profit}
		if err := setRow(f, SheetMonthly, i+2, values); err != nil {
			return err
		}
	}

	last := len(r.Months) + 1
	colStyles := map[int]int{2: st.money, 3: st.count, 4: st.money, 5: st.ratio, 6: st.money, 7: st.money}
	for col, style := range colStyles {
		if err := styleColumn(f, SheetMonthly, col, 2, last, style); err != nil {
			return err
		}
	}

	if len(r.Months) < 2 {
		return nil
	}
	return f.AddChart(SheetMonthly, "I2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", SheetMonthly),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetMonthly, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", SheetMonthly, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Revenue by month"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func writeChannels(f *excelize.File, r Report, st styleSet) error {
	headers := []string{"Channel", "Investment", "Share", "Attributed Revenue", "ROAS"}
	if err := writeHeader(f, SheetChannels, headers, st.header); err != nil {
		return err
	}
	for i, c := range r.Channels {
		values := []interface{}{source.ChannelLabel(c.Channel), c.Investment, c.SharePercent / 100, c.AttributedRevenue, c.ROAS}
		if err := setRow(f, SheetChannels, i+2, values); err != nil {
			return err
		}
	}
	last := len(r.Channels) + 1
	colStyles := map[int]int{2: st.money, 3: st.pct, 4: st.money, 5: st.ratio}
	for col, style := range colStyles {
		if err := styleColumn(f, SheetChannels, col, 2, last, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRows(f *excelize.File, r Report, st styleSet) error {
	headers := []string{"Line", "Month", "Month #", "Revenue", "Customers"}
	for _, ch := range r.Selected {
		headers = append(headers, ch)
	}
	if err := writeHeader(f, SheetRows, headers, st.header); err != nil {
		return err
	}
	for i, row := range r.Rows {
		values := []interface{}{row.Line, row.Month, row.MonthID, row.Revenue, row.Customers}
		for _, ch := range r.Selected {
			values = append(values, row.Investments[ch])
		}
		if err := setRow(f, SheetRows, i+2, values); err != nil {
			return err
		}
	}
	last := len(r.Rows) + 1
	if err := styleColumn(f, SheetRows, 4, 2, last, st.money); err != nil {
		return err
	}
	for j := range r.Selected {
		if err := styleColumn(f, SheetRows, 6+j, 2, last, st.money); err != nil {
			return err
		}
	}
	return nil
}
