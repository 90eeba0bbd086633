package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/logger"
	"github.com/andy/pharmabill/internal/repository"
)

// PaymentService records payments against invoices
type PaymentService interface {
	// Apply records a payment and refreshes the invoice balance and status.
	// A rejected payment leaves the invoice untouched.
	Apply(ctx context.Context, invoiceID string, amount int64, mode domain.PaymentMode) (*domain.Invoice, *domain.Payment, error)

	// History returns the payments of an invoice in the order they were recorded
	History(ctx context.Context, invoiceID string) ([]*domain.Payment, error)
}

type paymentService struct {
	invoices repository.InvoiceRepository
	now      func() time.Time
	log      zerolog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(invoices repository.InvoiceRepository) PaymentService {
	return &paymentService{
		invoices: invoices,
		now:      time.Now,
		log:      logger.WithComponent("payments"),
	}
}

func (s *paymentService) Apply(ctx context.Context, invoiceID string, amount int64, mode domain.PaymentMode) (*domain.Invoice, *domain.Payment, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	i := findIndex(invoices, func(inv *domain.Invoice) bool { return byRef(invoiceID)(&inv.Document) })
	if i < 0 {
		return nil, nil, notFound("invoice", invoiceID)
	}
	inv := invoices[i]

	p, err := inv.ApplyPayment(amount, mode, s.now())
	if err != nil {
		s.log.Warn().Err(err).Str("number", inv.Number).Msg("payment rejected")
		return nil, nil, err
	}

	s.log.Info().
		Str("number", inv.Number).
		Int64("amount", amount).
		Str("mode", string(mode)).
		Int64("balance", inv.Balance).
		Str("status", string(inv.Status)).
		Msg("payment recorded")

	return inv, p, s.invoices.Replace(ctx, invoices)
}

func (s *paymentService) History(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(invoices, func(inv *domain.Invoice) bool { return byRef(invoiceID)(&inv.Document) })
	if i < 0 {
		return nil, notFound("invoice", invoiceID)
	}

	out := make([]*domain.Payment, len(invoices[i].Payments))
	copy(out, invoices[i].Payments)
	return out, nil
}
