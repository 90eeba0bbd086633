package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/domain"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and delete clients.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		search, _ := cmd.Flags().GetString("search")

		clients, err := appInstance.CatalogService.ListClients(ctx, search)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		fmt.Printf("%-36s %-30s %-18s %-25s\n", "ID", "Name", "Phone", "Email")
		fmt.Println("----------------------------------------------------------------------------------------------------------------")
		for _, client := range clients {
			fmt.Printf("%-36s %-30s %-18s %-25s\n",
				client.ID,
				truncate(client.Name, 30),
				truncate(client.Phone, 18),
				truncate(client.Email, 25),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		phone, _ := cmd.Flags().GetString("phone")
		client := domain.NewClient(args[0], phone)
		client.Email, _ = cmd.Flags().GetString("email")
		client.Address, _ = cmd.Flags().GetString("address")

		client, err := appInstance.CatalogService.CreateClient(ctx, client)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing client",
	Long:  `Edit a client. Documents already issued keep the client name they were issued with.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := appInstance.CatalogService.GetClient(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		if cmd.Flags().Changed("name") {
			client.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("phone") {
			client.Phone, _ = cmd.Flags().GetString("phone")
		}
		if cmd.Flags().Changed("email") {
			client.Email, _ = cmd.Flags().GetString("email")
		}
		if cmd.Flags().Changed("address") {
			client.Address, _ = cmd.Flags().GetString("address")
		}

		if _, err := appInstance.CatalogService.UpdateClient(ctx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", client.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.CatalogService.DeleteClient(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		fmt.Println("✓ Client deleted")
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	clientsListCmd.Flags().String("search", "", "Filter by name or phone")

	clientsAddCmd.Flags().String("phone", "", "Client phone (required)")
	clientsAddCmd.MarkFlagRequired("phone")
	clientsAddCmd.Flags().String("email", "", "Client email")
	clientsAddCmd.Flags().String("address", "", "Client address")

	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().String("phone", "", "New phone")
	clientsEditCmd.Flags().String("email", "", "New email")
	clientsEditCmd.Flags().String("address", "", "New address")
}
