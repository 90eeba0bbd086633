package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all data",
	Long: `Erase every product, client, proforma, invoice and setting.
Factory defaults are installed again on the next start.

Export a backup first:
  pharmabill backup export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL data (catalog, clients, proformas, invoices, settings). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.SettingsService.Reset(context.Background()); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
