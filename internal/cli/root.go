package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "pharmabill",
	Short: "Proforma and invoice management for a pharmacy",
	Long: `Pharmabill manages the product catalog, clients, proformas, invoices
and payments of a pharmacy, with amounts in Francs CFA.

By default, running pharmabill without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(newDocumentCmd(proformaCommands))
	rootCmd.AddCommand(newDocumentCmd(invoiceCommands))
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tuiCmd)
}
