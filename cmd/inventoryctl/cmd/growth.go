package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

var period string

var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Show inventory growth over the last week, month or year",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := syncService.Ledger().GrowthStats(context.Background(), userID, period)
		if err != nil {
			return err
		}
		printGrowth(cmd.OutOrStdout(), stats)
		return nil
	},
}

func printGrowth(w io.Writer, s *models.GrowthStats) {
	fmt.Fprintf(w, "period:  %s (%d days)\n", s.Period, s.Days)
	fmt.Fprintf(w, "changes: %d\n", s.TotalChanges)
	if s.TotalChanges == 0 {
		return
	}
	fmt.Fprintf(w, "items:   %+d (avg %+.2f)\n", s.ItemsGrowth, s.AvgItemsChange)
	fmt.Fprintf(w, "cards:   %+d (avg %+.2f)\n", s.CardsGrowth, s.AvgCardsChange)
	fmt.Fprintf(w, "value:   %s (avg %s)\n", formatUSD(s.ValueGrowth), formatUSD(s.AvgValueChange))
	for _, c := range s.RecentChanges {
		fmt.Fprintf(w, "  %s  %-14s %+5d items  %s\n", c.ChangeDate, c.ChangeType, c.TotalItemsChange, formatUSD(c.TotalValueChange))
	}
}

// formatUSD renders a decimal amount as "$1,234.50"
func formatUSD(amount decimal.Decimal) string {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

func init() {
	growthCmd.Flags().StringVarP(&period, "period", "p", "month", "week, month or year")
	rootCmd.AddCommand(growthCmd)
}
