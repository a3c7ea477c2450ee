package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/report"
)

var (
	flagExportOut   string
	flagExportChart string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered KPIs to an xlsx report and optional PNG charts",
	Example: `  salesdash export --out report.xlsx
  salesdash export --from mar --to jun --chart revenue.png`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "report.xlsx", "Output workbook path")
	exportCmd.Flags().StringVar(&flagExportChart, "chart", "", "Also save charts: revenue to this path, channels beside it")
	rootCmd.AddCommand(exportCmd)
}

// channelChartPath derives "revenue-channels.png" from "revenue.png".
func channelChartPath(revenuePath string) string {
	ext := filepath.Ext(revenuePath)
	return strings.TrimSuffix(revenuePath, ext) + "-channels" + ext
}

func runExport(_ *cobra.Command, _ []string) error {
	_, view, err := loadView()
	if err != nil {
		return err
	}

	months := pipeline.AggregateMonths(view.Rows, view.Channels)
	channels := pipeline.AggregateChannels(view.Rows, view.Channels)

	r := report.Report{
		Title:    rangeLabel(view.Query),
		Currency: config.ResolveCurrency(cfg.Currency),
		Summary:  pipeline.Aggregate(view.Rows, view.Channels),
		Months:   months,
		Channels: channels,
		Rows:     view.Rows,
		Selected: view.Channels,
	}

	if err := report.WriteWorkbook(flagExportOut, r); err != nil {
		return err
	}
	logger.Debug("report written", zap.String("path", flagExportOut), zap.Int("rows", len(view.Rows)))
	fmt.Printf("  Wrote %s (%d rows, %d months)\n", flagExportOut, len(view.Rows), len(months))

	if flagExportChart == "" {
		return nil
	}
	if err := report.RevenueChart(flagExportChart, months); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", flagExportChart)

	if len(channels) > 0 {
		path := channelChartPath(flagExportChart)
		if err := report.ChannelChart(path, channels); err != nil {
			return err
		}
		fmt.Printf("  Wrote %s\n", path)
	}
	return nil
}
