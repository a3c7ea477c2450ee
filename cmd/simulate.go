package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
)

var flagInvest float64

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "What-if: project revenue for a hypothetical investment",
	Long: `Project revenue for a hypothetical marketing investment using the
historical ROAS of the selected months and channels.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Float64VarP(&flagInvest, "invest", "i", 0, "Hypothetical investment (default: [simulator] default_investment)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	_, view, err := loadView()
	if err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		fmt.Println("\n  No rows match the selected months.")
		return nil
	}

	invest := cfg.Simulator.DefaultInvestment
	if cmd.Flags().Changed("invest") {
		invest = flagInvest
	}
	if err := pipeline.CheckInvestment(invest); err != nil {
		return err
	}

	sim := pipeline.Project(view.Rows, view.Channels, invest)

	fmt.Println()
	fmt.Println(cli.RenderTitle("WHAT-IF SIMULATOR  " + rangeLabel(view.Query)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Historical ROAS", cli.FormatRatio(sim.AvgROAS)},
			{"Investment", cli.FormatMoney(sim.Investment)},
			{"---"},
			{"Projected Revenue", cli.FormatMoney(sim.ProjectedRevenue)},
			{"Projected Profit", cli.FormatMoney(sim.ProjectedProfit)},
		},
	}))

	if sim.AvgROAS == 0 {
		fmt.Println(cli.Warn("  No investment in the selected channels; ROAS is 0."))
	}

	// Scenario ladder around the chosen amount
	if invest > 0 {
		var rows [][]string
		for _, f := range []float64{0.5, 1, 1.5, 2} {
			amount := invest * f
			projected := pipeline.Simulate(sim.AvgROAS, amount)
			rows = append(rows, []string{
				cli.FormatPercent(f),
				cli.FormatMoney(amount),
				cli.FormatMoney(projected),
				cli.FormatMoney(projected - amount),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Scenarios",
			Headers: []string{"Scale", "Investment", "Revenue", "Profit"},
			Rows:    rows,
		}))
	}

	fc := pipeline.Forecast(pipeline.AggregateMonths(view.Rows, view.Channels))
	if fc.Valid {
		fmt.Println()
		fmt.Printf("  Trend forecast for %s: %s  (%s/month, R² %.2f)\n",
			source.MonthLabel(fc.NextMonthID),
			cli.FormatMoney(fc.Revenue),
			cli.FormatDelta(fc.Slope, 0),
			fc.RSquared,
		)
	}
	return nil
}
