package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data file:  %s\n", dataPath())
	sheet := cfg.General.Sheet
	if flagSheet != "" {
		sheet = flagSheet
	}
	if sheet == "" {
		sheet = "(first sheet)"
	}
	fmt.Printf("    Sheet:      %s\n", sheet)
	fmt.Println()

	fmt.Println("  [Columns]")
	fmt.Printf("    Month:      %s\n", cfg.Columns.Month)
	fmt.Printf("    Revenue:    %s\n", cfg.Columns.Revenue)
	fmt.Printf("    Customers:  %s\n", cfg.Columns.Customers)
	if len(cfg.Columns.Channels) > 0 {
		fmt.Printf("    Channels:   %s\n", strings.Join(cfg.Columns.Channels, ", "))
	} else {
		fmt.Println("    Channels:   auto-detect (INVEST* headers)")
	}
	fmt.Println()

	cur := config.ResolveCurrency(cfg.Currency)
	fmt.Println("  [Currency]")
	fmt.Printf("    Code:       %s\n", cur.Code)
	fmt.Printf("    Written as: %s 1%s234%s56\n", cur.Symbol, cur.Thousand, cur.Decimal)
	fmt.Println()

	fmt.Println("  [Simulator]")
	fmt.Printf("    Default investment: %s\n", cli.FormatMoney(cfg.Simulator.DefaultInvestment))
	fmt.Println()

	fmt.Println("  [Goals]")
	if g := cfg.Goals.MonthlyRevenue; g != nil {
		fmt.Printf("    Monthly revenue: %s\n", cli.FormatMoney(*g))
	} else {
		fmt.Println("    Monthly revenue: not set")
	}
	if c := cfg.Goals.MaxCAC; c != nil {
		fmt.Printf("    Max CAC:         %s\n", cli.FormatMoney(*c))
	} else {
		fmt.Println("    Max CAC:         not set")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto reload: %v\n", cfg.TUI.AutoReload)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Server.IntervalSeconds)
	fmt.Println()

	fmt.Println("  Run `salesdash setup` to reconfigure.")
	return nil
}
