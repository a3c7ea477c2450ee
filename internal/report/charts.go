package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
)

var (
	colorRevenue = color.RGBA{R: 0x3A, G: 0xA9, B: 0x9F, A: 0xFF}
	colorSpend   = color.RGBA{R: 0x43, G: 0x85, B: 0xBE, A: 0xFF}
)

// RevenueChart saves a line chart of monthly revenue. The image format
// follows the file extension (png, svg, pdf).
func RevenueChart(path string, months []model.MonthStats) error {
	if len(months) == 0 {
		return fmt.Errorf("revenue chart: no months to plot")
	}

	p := plot.New()
	p.Title.Text = "Revenue by month"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Revenue"
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		points[i].X = float64(i)
		points[i].Y = m.Revenue
		labels[i] = m.Month
		if m.MonthID != 0 {
			labels[i] = source.MonthLabel(m.MonthID)
		}
	}

	line, pts, err := plotter.NewLinePoints(points)
	if err != nil {
		return fmt.Errorf("revenue chart: %w", err)
	}
	line.Color = colorRevenue
	line.Width = vg.Points(2)
	pts.Color = colorRevenue
	p.Add(line, pts)
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// ChannelChart saves a bar chart of investment per channel.
func ChannelChart(path string, channels []model.ChannelStats) error {
	if len(channels) == 0 {
		return fmt.Errorf("channel chart: no channels to plot")
	}

	p := plot.New()
	p.Title.Text = "Investment by channel"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Investment"

	values := make(plotter.Values, len(channels))
	labels := make([]string, len(channels))
	for i, c := range channels {
		values[i] = c.Investment
		labels[i] = source.ChannelLabel(c.Channel)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(28))
	if err != nil {
		return fmt.Errorf("channel chart: %w", err)
	}
	bars.Color = colorSpend
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
