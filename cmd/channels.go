package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/pipeline"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Investment, share and attributed ROAS per marketing channel",
	RunE:  runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

func trendArrow(dir int) string {
	switch {
	case dir > 0:
		return "↑"
	case dir < 0:
		return "↓"
	default:
		return "→"
	}
}

func runChannels(_ *cobra.Command, _ []string) error {
	result, view, err := loadView()
	if err != nil {
		return err
	}

	if len(result.Channels) == 0 {
		fmt.Println("\n  No investment columns found. Name them INVESTIMENTO <channel>")
		fmt.Println("  or list them under [columns] channels in the config file.")
		return nil
	}

	channels := pipeline.AggregateChannels(view.Rows, view.Channels)
	labels := result.ChannelLabels()

	fmt.Println()
	fmt.Println(cli.RenderTitle("CHANNELS  " + rangeLabel(view.Query)))
	fmt.Println()

	var total float64
	rows := make([][]string, 0, len(channels)+2)
	for _, c := range channels {
		total += c.Investment
		rows = append(rows, []string{
			labels[c.Channel],
			cli.FormatMoney(c.Investment),
			cli.FormatPercent(c.SharePercent/100),
			cli.FormatMoney(c.AttributedRevenue),
			cli.FormatRatio(c.ROAS),
			trendArrow(c.TrendDirection),
		})
	}
	rows = append(rows, []string{"---"}, []string{"Total", cli.FormatMoney(total), "", "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Channel", "Investment", "Share", "Attributed", "ROAS", "Trend"},
		Rows:    rows,
	}))

	if len(channels) > 0 && channels[0].Investment > 0 {
		fmt.Println()
		for _, c := range channels {
			fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-14s", labels[c.Channel]), c.Investment, channels[0].Investment, 30))
		}
	}

	skipped := len(result.Channels) - len(view.Channels)
	if skipped > 0 {
		fmt.Println()
		fmt.Println(cli.Muted(fmt.Sprintf("  %d channel(s) excluded by --channels", skipped)))
	}
	return nil
}
