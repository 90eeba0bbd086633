package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
	Long:  `List, add, edit, activate, deactivate and delete catalog products.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		all, _ := cmd.Flags().GetBool("all")
		search, _ := cmd.Flags().GetString("search")

		products, err := appInstance.CatalogService.ListProducts(ctx, all, search)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		if len(products) == 0 {
			fmt.Println("No products found")
			return nil
		}

		fmt.Printf("%-36s %-30s %-16s %-8s %16s %-8s\n", "ID", "Name", "Category", "Unit", "Price", "Status")
		fmt.Println("--------------------------------------------------------------------------------------------------------------------")
		for _, p := range products {
			status := "Active"
			if !p.IsActive {
				status = "Inactive"
			}
			fmt.Printf("%-36s %-30s %-16s %-8s %16s %-8s\n",
				p.ID,
				truncate(p.Name, 30),
				truncate(p.Category, 16),
				truncate(p.Unit, 8),
				format.Currency(p.UnitPrice),
				status,
			)
		}

		fmt.Printf("\nTotal: %d product(s)\n", len(products))
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a product to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		priceStr, _ := cmd.Flags().GetString("price")
		price, err := format.ParseAmount(priceStr)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")

		product := domain.NewProduct(args[0], category, price)
		product.Unit, _ = cmd.Flags().GetString("unit")
		product.Description, _ = cmd.Flags().GetString("description")

		product, err = appInstance.CatalogService.CreateProduct(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		fmt.Printf("✓ Product created: %s (ID: %s)\n", product.Name, product.ID)
		fmt.Printf("  Price: %s\n", format.Currency(product.UnitPrice))
		return nil
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		product, err := appInstance.CatalogService.GetProduct(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}

		if cmd.Flags().Changed("name") {
			product.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("price") {
			priceStr, _ := cmd.Flags().GetString("price")
			if product.UnitPrice, err = format.ParseAmount(priceStr); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("category") {
			product.Category, _ = cmd.Flags().GetString("category")
		}
		if cmd.Flags().Changed("unit") {
			product.Unit, _ = cmd.Flags().GetString("unit")
		}
		if cmd.Flags().Changed("description") {
			product.Description, _ = cmd.Flags().GetString("description")
		}

		if _, err := appInstance.CatalogService.UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		fmt.Printf("✓ Product updated: %s\n", product.Name)
		return nil
	},
}

func productToggleCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: fmt.Sprintf("Mark a product %s", map[bool]string{true: "active", false: "inactive"}[active]),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := appInstance.CatalogService.SetProductActive(context.Background(), args[0], active)
			if err != nil {
				return fmt.Errorf("failed to %s product: %w", use, err)
			}
			fmt.Printf("✓ Product %sd: %s\n", use, product.Name)
			return nil
		},
	}
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a product from the catalog",
	Long:  `Delete a product. Existing documents keep their copy of the product line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.CatalogService.DeleteProduct(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		fmt.Println("✓ Product deleted")
		return nil
	},
}

func init() {
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsEditCmd)
	productsCmd.AddCommand(productToggleCmd("activate", true))
	productsCmd.AddCommand(productToggleCmd("deactivate", false))
	productsCmd.AddCommand(productsDeleteCmd)

	productsListCmd.Flags().Bool("all", false, "Include inactive products")
	productsListCmd.Flags().String("search", "", "Filter by name or category")

	productsAddCmd.Flags().String("price", "", "Unit price in Francs CFA (required)")
	productsAddCmd.MarkFlagRequired("price")
	productsAddCmd.Flags().String("category", "", "Category")
	productsAddCmd.Flags().String("unit", "", "Unit (e.g. Boîte)")
	productsAddCmd.Flags().String("description", "", "Description")

	productsEditCmd.Flags().String("name", "", "New name")
	productsEditCmd.Flags().String("price", "", "New unit price")
	productsEditCmd.Flags().String("category", "", "New category")
	productsEditCmd.Flags().String("unit", "", "New unit")
	productsEditCmd.Flags().String("description", "", "New description")
}
