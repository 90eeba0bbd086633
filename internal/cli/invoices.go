package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
)

var invoiceCommands = documentCommands{
	kind:  domain.KindInvoice,
	use:   "invoices",
	short: "Manage invoices and payments",
	list: func(cmd *cobra.Command, search string) ([]domain.Record, error) {
		invoices, err := appInstance.DocumentService.ListInvoices(context.Background(), search)
		if err != nil {
			return nil, err
		}
		unpaid, _ := cmd.Flags().GetBool("unpaid")
		recs := make([]domain.Record, 0, len(invoices))
		for _, inv := range invoices {
			if unpaid && (inv.IsPaid() || inv.Status == domain.StatusCancelled) {
				continue
			}
			recs = append(recs, inv)
		}
		return recs, nil
	},
	listFlags: func(cmd *cobra.Command) {
		cmd.Flags().Bool("unpaid", false, "Only invoices with an open balance")
	},
	extra: []*cobra.Command{invoicesPayCmd, invoicesPaymentsCmd, invoicesCancelCmd},
}

var invoicesPayCmd = &cobra.Command{
	Use:   "pay [id_or_number] [amount]",
	Short: "Record a payment against an invoice",
	Long: `Record a payment. The amount cannot exceed the remaining balance.

Modes: cash, transfer, mobile, card.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := format.ParseAmount(args[1])
		if err != nil {
			return err
		}
		modeStr, _ := cmd.Flags().GetString("mode")
		mode, ok := domain.ParsePaymentMode(modeStr)
		if !ok {
			return fmt.Errorf("unknown payment mode %q (use cash, transfer, mobile or card)", modeStr)
		}

		inv, p, err := appInstance.PaymentService.Apply(context.Background(), args[0], amount, mode)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		fmt.Printf("✓ Payment of %s (%s) recorded on %s\n", format.Currency(p.Amount), p.Mode, inv.Number)
		fmt.Printf("  Paid:    %s\n", format.Currency(inv.PaidAmount))
		fmt.Printf("  Balance: %s\n", format.Currency(inv.Balance))
		fmt.Printf("  Status:  %s\n", inv.Status)
		return nil
	},
}

var invoicesPaymentsCmd = &cobra.Command{
	Use:   "payments [id_or_number]",
	Short: "Show the payment history of an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payments, err := appInstance.PaymentService.History(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(payments) == 0 {
			fmt.Println("No payments recorded")
			return nil
		}
		printPayments(os.Stdout, payments)
		return nil
	},
}

var invoicesCancelCmd = &cobra.Command{
	Use:   "cancel [id_or_number]",
	Short: "Cancel an invoice that has no payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := appInstance.DocumentService.CancelInvoice(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel invoice: %w", err)
		}
		fmt.Printf("✓ Invoice %s cancelled\n", inv.Number)
		return nil
	},
}

func init() {
	modes := make([]string, len(domain.PaymentModes))
	for i, m := range domain.PaymentModes {
		modes[i] = string(m)
	}
	invoicesPayCmd.Flags().String("mode", "cash", "Payment mode: cash, transfer, mobile, card ("+strings.Join(modes, ", ")+")")
}
