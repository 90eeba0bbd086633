package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/format"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show turnover and collection figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		stats, err := appInstance.ReportService.Stats(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		fmt.Printf("Turnover today:      %s\n", format.Currency(stats.DailyTurnover))
		fmt.Printf("Turnover this month: %s\n", format.Currency(stats.MonthlyTurnover))
		fmt.Printf("Collected:           %s\n", format.Currency(stats.TotalCollected))
		fmt.Printf("Outstanding:         %s\n", format.Currency(stats.TotalRemaining))
		fmt.Printf("Invoices:            %d\n", stats.InvoiceCount)
		fmt.Printf("Pending proformas:   %d\n", stats.PendingProformas)

		limit, _ := cmd.Flags().GetInt("recent")
		if limit <= 0 {
			return nil
		}
		recent, err := appInstance.ReportService.RecentInvoices(ctx, limit)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Println()
			fmt.Println("Recent invoices:")
			for _, inv := range recent {
				fmt.Printf("  %-16s %-28s %16s %-10s\n", inv.Number, truncate(inv.ClientName, 28), format.Currency(inv.Total), inv.Status)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("recent", 5, "Number of recent invoices to list")
}
