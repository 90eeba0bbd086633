package service

import (
	"context"
	"strings"
	"time"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/repository"
)

// Stats is the dashboard summary
type Stats struct {
	DailyTurnover    int64 // non-cancelled invoices dated today
	MonthlyTurnover  int64 // non-cancelled invoices dated this month
	TotalCollected   int64 // all payments received
	TotalRemaining   int64 // open balances of non-cancelled invoices
	InvoiceCount     int
	PendingProformas int
}

// ReportService provides aggregations for the dashboard
type ReportService interface {
	Stats(ctx context.Context, now time.Time) (*Stats, error)
	// RecentInvoices returns the most recently created invoices, newest first
	RecentInvoices(ctx context.Context, limit int) ([]*domain.Invoice, error)
}

type reportService struct {
	invoices  repository.InvoiceRepository
	proformas repository.ProformaRepository
}

// NewReportService creates a new report service
func NewReportService(
	invoices repository.InvoiceRepository,
	proformas repository.ProformaRepository,
) ReportService {
	return &reportService{
		invoices:  invoices,
		proformas: proformas,
	}
}

func (s *reportService) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	proformas, err := s.proformas.List(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.Today(now)
	month := today[:len("2006-01")]

	stats := &Stats{InvoiceCount: len(invoices)}
	for _, inv := range invoices {
		stats.TotalCollected += inv.PaidAmount
		if inv.Status == domain.StatusCancelled {
			continue
		}
		stats.TotalRemaining += inv.Balance
		if strings.HasPrefix(inv.Date, today) {
			stats.DailyTurnover += inv.Total
		}
		if strings.HasPrefix(inv.Date, month) {
			stats.MonthlyTurnover += inv.Total
		}
	}

	for _, p := range proformas {
		if !p.IsArchived() {
			stats.PendingProformas++
		}
	}

	return stats, nil
}

func (s *reportService) RecentInvoices(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}

	if limit < 0 {
		limit = 0
	}
	out := make([]*domain.Invoice, 0, limit)
	for i := len(invoices) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, invoices[i])
	}
	return out, nil
}
