package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/pipeline"
)

var monthlyCmd = &cobra.Command{
	Use:     "monthly",
	Aliases: []string{"months"},
	Short:   "Per-month revenue, investment, ROAS and CAC",
	RunE:    runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	_, view, err := loadView()
	if err != nil {
		return err
	}

	months := pipeline.AggregateMonths(view.Rows, view.Channels)
	if len(months) == 0 {
		fmt.Println("\n  No data for the selected months.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY  " + rangeLabel(view.Query)))
	fmt.Println()

	rows := make([][]string, 0, len(months)+2)
	for _, m := range months {
		rows = append(rows, []string{
			m.Month,
			cli.FormatMoney(m.Revenue),
			cli.FormatCount(m.Customers),
			cli.FormatMoney(m.Investment),
			cli.FormatRatio(m.ROAS),
			cli.FormatMoney(m.CAC),
			cli.FormatMoney(m.Profit),
		})
	}

	total := pipeline.Aggregate(view.Rows, view.Channels)
	rows = append(rows, []string{"---"}, []string{
		"Total",
		cli.FormatMoney(total.Revenue),
		cli.FormatCount(total.Customers),
		cli.FormatMoney(total.Investment),
		cli.FormatRatio(total.ROAS),
		cli.FormatMoney(total.CAC),
		cli.FormatMoney(total.Profit),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Revenue", "Customers", "Investment", "ROAS", "CAC", "Profit"},
		Rows:    rows,
	}))

	revenue := pipeline.MonthlyRevenue(months)
	dist := pipeline.Describe(revenue)
	fmt.Println()
	fmt.Printf("  Revenue trend  %s\n", cli.RenderSparkline(revenue))
	fmt.Println(cli.Muted(fmt.Sprintf("  median %s  min %s  max %s  std dev %s",
		cli.FormatMoneyShort(dist.Median),
		cli.FormatMoneyShort(dist.Min),
		cli.FormatMoneyShort(dist.Max),
		cli.FormatMoneyShort(dist.StdDev),
	)))
	return nil
}
