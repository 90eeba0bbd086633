package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/service"
)

var proformaCommands = documentCommands{
	kind:  domain.KindProforma,
	use:   "proformas",
	short: "Manage proformas (quotes)",
	list: func(cmd *cobra.Command, search string) ([]domain.Record, error) {
		filter := service.ProformasPending
		if archived, _ := cmd.Flags().GetBool("archived"); archived {
			filter = service.ProformasArchived
		}
		if all, _ := cmd.Flags().GetBool("all"); all {
			filter = service.ProformasAll
		}
		proformas, err := appInstance.DocumentService.ListProformas(context.Background(), filter, search)
		if err != nil {
			return nil, err
		}
		recs := make([]domain.Record, len(proformas))
		for i, p := range proformas {
			recs[i] = p
		}
		return recs, nil
	},
	listFlags: func(cmd *cobra.Command) {
		cmd.Flags().Bool("archived", false, "Show converted, paid and cancelled proformas")
		cmd.Flags().Bool("all", false, "Show every proforma")
	},
	extra: []*cobra.Command{proformasConvertCmd, proformasPaidCmd, proformasCancelCmd},
}

var proformasConvertCmd = &cobra.Command{
	Use:   "convert [id_or_number]",
	Short: "Create an invoice from a pending proforma",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, p, err := appInstance.DocumentService.ConvertToInvoice(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to convert proforma: %w", err)
		}
		fmt.Printf("✓ Proforma %s converted to invoice %s\n", p.Number, inv.Number)
		fmt.Printf("  Balance due: %s\n", format.Currency(inv.Balance))
		return nil
	},
}

var proformasPaidCmd = &cobra.Command{
	Use:   "paid [id_or_number]",
	Short: "Archive a pending proforma as paid without issuing an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := appInstance.DocumentService.MarkProformaPaid(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to mark proforma paid: %w", err)
		}
		fmt.Printf("✓ Proforma %s marked paid\n", p.Number)
		return nil
	},
}

var proformasCancelCmd = &cobra.Command{
	Use:   "cancel [id_or_number]",
	Short: "Cancel a pending proforma",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := appInstance.DocumentService.CancelProforma(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel proforma: %w", err)
		}
		fmt.Printf("✓ Proforma %s cancelled\n", p.Number)
		return nil
	},
}
