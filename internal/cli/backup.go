package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore a JSON backup of all data",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write a backup file",
	Long: `Write a backup of every collection. Without a path the file is written to the
configured export directory as SAUVEGARDE_PHARMACIE_YYYY_MM_DD.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		written, err := appInstance.WriteBackup(context.Background(), path)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Backup written to %s\n", written)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Replace all data with the contents of a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will REPLACE all current data with the backup. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.SettingsService.Import(context.Background(), data); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		fmt.Println("✓ Backup restored")
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)

	backupImportCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
