package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "KPI summary: revenue, ticket, customers, ROAS, CAC, profit",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	result, view, err := loadView()
	if err != nil {
		return err
	}

	if len(result.Rows) == 0 {
		fmt.Println("\n  The sheet has no data rows.")
		return nil
	}
	if len(view.Rows) == 0 {
		fmt.Println("\n  No rows match the selected months.")
		return nil
	}

	// Previous window only exists for a closed range
	comparison := pipeline.Compare(result.Rows, view.Channels, view.Query.From, view.Query.To)
	stats := pipeline.Aggregate(view.Rows, view.Channels)
	if len(view.Query.Months) > 0 {
		comparison.HasPrevious = false
	}
	prev := comparison.Previous

	withDelta := func(value string, cur, before float64) string {
		if !comparison.HasPrevious {
			return value
		}
		if change := cli.FormatChange(cur, before); change != "" {
			return fmt.Sprintf("%s  (%s)", value, change)
		}
		return value
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SALES SUMMARY  " + rangeLabel(view.Query)))
	fmt.Println()

	rows := [][]string{
		{"Months", cli.FormatNumber(int64(stats.Months))},
		{"---"},
		{"Revenue", withDelta(cli.FormatMoney(stats.Revenue), stats.Revenue, prev.Revenue)},
		{"Avg Ticket", cli.FormatMoney(stats.AvgTicket)},
		{"Customers", withDelta(cli.FormatCount(stats.Customers), stats.Customers, prev.Customers)},
		{"Revenue/Customer", cli.FormatMoney(stats.RevenuePerCustomer)},
		{"---"},
		{"Investment", withDelta(cli.FormatMoney(stats.Investment), stats.Investment, prev.Investment)},
		{"ROAS", cli.FormatRatio(stats.ROAS)},
		{"CAC", cli.FormatMoney(stats.CAC)},
		{"---"},
		{"Profit", withDelta(cli.FormatMoney(stats.Profit), stats.Profit, prev.Profit)},
		{"Margin", cli.FormatPercent(stats.Margin)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	months := pipeline.AggregateMonths(view.Rows, view.Channels)
	goals := pipeline.Goals(months, stats, cfg.Goals)
	if goals.MonthlyRevenueTarget != nil {
		fmt.Println()
		fmt.Printf("  Monthly goal %s  %s  (%d/%d months on target)\n",
			cli.FormatMoney(*goals.MonthlyRevenueTarget),
			cli.RenderGoalBar(goals.RevenueProgress, 20),
			goals.MonthsOnTarget, len(months))
	}
	if goals.MaxCAC != nil && !goals.CACWithinLimit {
		fmt.Println(cli.Warn(fmt.Sprintf("  CAC %s is above the %s limit",
			cli.FormatMoney(stats.CAC), cli.FormatMoney(*goals.MaxCAC))))
	}

	fmt.Println()
	fmt.Println(cli.Muted(fmt.Sprintf("  Channels: %s", channelList(result, view.Channels))))
	return nil
}

func channelList(result *pipeline.LoadResult, channels []string) string {
	if len(channels) == 0 {
		return "none"
	}
	labels := result.ChannelLabels()
	out := ""
	for i, ch := range channels {
		if i > 0 {
			out += ", "
		}
		out += labels[ch]
	}
	return out
}
