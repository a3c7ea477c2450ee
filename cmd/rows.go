package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/salesdash/internal/cli"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Show the cleaned data rows as parsed from the sheet",
	RunE:  runRows,
}

func init() {
	rootCmd.AddCommand(rowsCmd)
}

func runRows(_ *cobra.Command, _ []string) error {
	result, view, err := loadView()
	if err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		fmt.Println("\n  No rows match the selected months.")
		return nil
	}

	labels := result.ChannelLabels()
	headers := []string{"Line", "Month", "#", "Revenue", "Customers"}
	for _, ch := range view.Channels {
		headers = append(headers, labels[ch])
	}

	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		id := "?"
		if r.MonthID != 0 {
			id = strconv.Itoa(r.MonthID)
		}
		row := []string{
			strconv.Itoa(r.Line),
			r.Month,
			id,
			cli.FormatMoney(r.Revenue),
			cli.FormatCount(r.Customers),
		}
		for _, ch := range view.Channels {
			row = append(row, cli.FormatMoney(r.Investments[ch]))
		}
		rows = append(rows, row)
	}

	title := result.Path
	if result.Sheet != "" {
		title += fmt.Sprintf("  sheet %q", result.Sheet)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
	}))
	fmt.Println(cli.Muted(fmt.Sprintf("  %d cells cleaned from currency text, %d unparseable (counted as 0)",
		result.CleanedCells, result.ParseFailures)))
	return nil
}
