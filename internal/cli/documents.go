package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/service"
)

// documentCommands describes one document command tree. Proformas and
// invoices share list/show/create/edit/line/delete and add their own
// lifecycle commands.
type documentCommands struct {
	kind      domain.Kind
	use       string
	short     string
	list      func(cmd *cobra.Command, search string) ([]domain.Record, error)
	listFlags func(cmd *cobra.Command)
	extra     []*cobra.Command
}

func newDocumentCmd(dc documentCommands) *cobra.Command {
	root := &cobra.Command{
		Use:   dc.use,
		Short: dc.short,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + dc.use + ", newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			recs, err := dc.list(cmd, search)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", dc.use, err)
			}
			if len(recs) == 0 {
				fmt.Printf("No %s found\n", dc.use)
				return nil
			}
			printDocumentTable(recs)
			fmt.Printf("\nTotal: %d %s(s)\n", len(recs), dc.kind)
			return nil
		},
	}
	list.Flags().String("search", "", "Filter by number or client name")
	if dc.listFlags != nil {
		dc.listFlags(list)
	}

	show := &cobra.Command{
		Use:   "show [id_or_number]",
		Short: "Show a " + string(dc.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := appInstance.DocumentService.Get(ctx, dc.kind, args[0])
			if err != nil {
				return err
			}
			settings, err := appInstance.SettingsService.GetSettings(ctx)
			if err != nil {
				return err
			}
			printDocument(os.Stdout, rec, settings.ShowUnitColumn)
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a " + string(dc.kind),
		Example: fmt.Sprintf("  pharmabill %s create --client \"Clinique du Plateau\" --item 1:2 --item 2 --discount 500", dc.use),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			draft, err := draftFromFlags(ctx, cmd, service.Draft{})
			if err != nil {
				return err
			}
			if dc.kind == domain.KindInvoice {
				draft.Number, _ = cmd.Flags().GetString("number")
			}
			rec, err := appInstance.DocumentService.Create(ctx, dc.kind, draft)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", dc.kind, err)
			}
			doc := rec.Base()
			fmt.Printf("✓ %s created: %s\n", strings.ToUpper(string(dc.kind[:1]))+string(dc.kind[1:]), doc.Number)
			fmt.Printf("  Client: %s\n", doc.ClientName)
			fmt.Printf("  Total:  %s\n", format.Currency(doc.Total))
			return nil
		},
	}
	addDraftFlags(create)
	if dc.kind == domain.KindInvoice {
		create.Flags().String("number", "", "Invoice number (manual numbering only)")
	}

	edit := &cobra.Command{
		Use:   "edit [id_or_number]",
		Short: "Change client, date, discount or lines of a " + string(dc.kind),
		Long:  "Flags that are not given keep their current value. --item replaces every line.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := appInstance.DocumentService.Get(ctx, dc.kind, args[0])
			if err != nil {
				return err
			}
			doc := rec.Base()
			draft, err := draftFromFlags(ctx, cmd, service.Draft{
				ClientID: doc.ClientID,
				Date:     doc.Date,
				Items:    doc.Items.Clone(),
				Discount: doc.Discount,
			})
			if err != nil {
				return err
			}
			rec, err = appInstance.DocumentService.Edit(ctx, dc.kind, doc.ID, draft)
			if err != nil {
				return fmt.Errorf("failed to edit %s: %w", dc.kind, err)
			}
			fmt.Printf("✓ %s updated, total %s\n", rec.Base().Number, format.Currency(rec.Base().Total))
			return nil
		},
	}
	addDraftFlags(edit)

	addLine := &cobra.Command{
		Use:   "add-line [id_or_number] [product_id]",
		Short: "Add a product, or one more unit of it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := appInstance.DocumentService.AddLineItem(context.Background(), dc.kind, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to add line: %w", err)
			}
			fmt.Printf("✓ %s total %s\n", rec.Base().Number, format.Currency(rec.Base().Total))
			return nil
		},
	}

	setLine := &cobra.Command{
		Use:   "set-line [id_or_number] [line]",
		Short: "Change quantity or unit price of a line (line id or 1-based position)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := appInstance.DocumentService.Get(ctx, dc.kind, args[0])
			if err != nil {
				return err
			}
			lineID, err := resolveLine(rec.Base(), args[1])
			if err != nil {
				return err
			}

			var changed bool
			if cmd.Flags().Changed("quantity") {
				qty, _ := cmd.Flags().GetInt64("quantity")
				if rec, err = appInstance.DocumentService.UpdateLineItem(ctx, dc.kind, args[0], lineID, domain.FieldQuantity, qty); err != nil {
					return fmt.Errorf("failed to update line: %w", err)
				}
				changed = true
			}
			if cmd.Flags().Changed("price") {
				priceStr, _ := cmd.Flags().GetString("price")
				price, err := format.ParseAmount(priceStr)
				if err != nil {
					return err
				}
				if rec, err = appInstance.DocumentService.UpdateLineItem(ctx, dc.kind, args[0], lineID, domain.FieldUnitPrice, price); err != nil {
					return fmt.Errorf("failed to update line: %w", err)
				}
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to change: use --quantity or --price")
			}
			fmt.Printf("✓ %s total %s\n", rec.Base().Number, format.Currency(rec.Base().Total))
			return nil
		},
	}
	setLine.Flags().Int64("quantity", 0, "New quantity (minimum 1)")
	setLine.Flags().String("price", "", "New unit price")

	removeLine := &cobra.Command{
		Use:   "remove-line [id_or_number] [line]",
		Short: "Remove a line (line id or 1-based position)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := appInstance.DocumentService.Get(ctx, dc.kind, args[0])
			if err != nil {
				return err
			}
			lineID, err := resolveLine(rec.Base(), args[1])
			if err != nil {
				return err
			}
			if rec, err = appInstance.DocumentService.RemoveLineItem(ctx, dc.kind, args[0], lineID); err != nil {
				return fmt.Errorf("failed to remove line: %w", err)
			}
			fmt.Printf("✓ %s total %s\n", rec.Base().Number, format.Currency(rec.Base().Total))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [id_or_number]",
		Short: "Delete a " + string(dc.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := appInstance.DocumentService.Get(ctx, dc.kind, args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !confirmPrompt(fmt.Sprintf("Delete %s %s?", dc.kind, rec.Base().Number)) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := appInstance.DocumentService.Delete(ctx, dc.kind, rec.Base().ID); err != nil {
				return fmt.Errorf("failed to delete %s: %w", dc.kind, err)
			}
			fmt.Printf("✓ %s deleted\n", rec.Base().Number)
			return nil
		},
	}
	del.Flags().BoolP("yes", "y", false, "Skip confirmation")

	root.AddCommand(list, show, create, edit, addLine, setLine, removeLine, del)
	root.AddCommand(dc.extra...)
	return root
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().String("client", "", "Client id or exact name")
	cmd.Flags().StringArray("item", nil, "Product as id[:quantity], repeatable")
	cmd.Flags().String("discount", "", "Discount in Francs CFA")
	cmd.Flags().String("date", "", "Document date (YYYY-MM-DD, DD/MM/YYYY, today)")
}

// draftFromFlags overlays the draft flags of cmd onto base
func draftFromFlags(ctx context.Context, cmd *cobra.Command, base service.Draft) (service.Draft, error) {
	draft := base

	if cmd.Flags().Changed("client") {
		ref, _ := cmd.Flags().GetString("client")
		client, err := resolveClient(ctx, ref)
		if err != nil {
			return draft, err
		}
		draft.ClientID = client.ID
	}
	if cmd.Flags().Changed("date") {
		s, _ := cmd.Flags().GetString("date")
		date, err := parseDate(s, time.Now())
		if err != nil {
			return draft, err
		}
		draft.Date = date
	}
	if cmd.Flags().Changed("discount") {
		s, _ := cmd.Flags().GetString("discount")
		discount, err := format.ParseAmount(s)
		if err != nil {
			return draft, err
		}
		draft.Discount = discount
	}
	if cmd.Flags().Changed("item") {
		specs, _ := cmd.Flags().GetStringArray("item")
		draft.Items = nil
		for _, s := range specs {
			spec, err := parseItemSpec(s)
			if err != nil {
				return draft, err
			}
			line, err := appInstance.DocumentService.AddToDraft(ctx, &draft, spec.ProductID)
			if err != nil {
				return draft, err
			}
			if _, err := draft.Items.Update(line.ID, domain.FieldQuantity, line.Quantity+spec.Quantity-1); err != nil {
				return draft, err
			}
		}
	}
	return draft, nil
}

// resolveClient finds a client by id, then by exact name
func resolveClient(ctx context.Context, ref string) (*domain.Client, error) {
	if c, err := appInstance.CatalogService.GetClient(ctx, ref); err == nil {
		return c, nil
	}
	clients, err := appInstance.CatalogService.ListClients(ctx, "")
	if err != nil {
		return nil, err
	}
	var found *domain.Client
	for _, c := range clients {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			if found != nil {
				return nil, fmt.Errorf("several clients are named %q, use the id", ref)
			}
			found = c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: client %q", domain.ErrNotFound, ref)
	}
	return found, nil
}

// resolveLine accepts a line id or a 1-based line position
func resolveLine(doc *domain.Document, ref string) (string, error) {
	if doc.Items.Find(ref) != nil {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(doc.Items) {
		return doc.Items[n-1].ID, nil
	}
	return "", fmt.Errorf("%w: line %q on %s", domain.ErrNotFound, ref, doc.Number)
}

func printDocumentTable(recs []domain.Record) {
	fmt.Printf("%-16s %-11s %-28s %16s %16s %-12s\n", "Number", "Date", "Client", "Total", "Balance", "Status")
	fmt.Println("--------------------------------------------------------------------------------------------------------")
	for _, rec := range recs {
		doc := rec.Base()
		balance := ""
		if inv, ok := rec.(*domain.Invoice); ok {
			balance = format.Currency(inv.Balance)
		}
		fmt.Printf("%-16s %-11s %-28s %16s %16s %-12s\n",
			doc.Number,
			format.Date(doc.Date),
			truncate(doc.ClientName, 28),
			format.Currency(doc.Total),
			balance,
			doc.Status,
		)
	}
}
