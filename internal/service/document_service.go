package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/format"
	"github.com/andy/pharmabill/internal/logger"
	"github.com/andy/pharmabill/internal/repository"
)

// Draft is the user input for creating or editing a document
type Draft struct {
	ClientID string
	// Date is YYYY-MM-DD; empty means today on create and unchanged on edit
	Date     string
	Items    domain.LineItems
	Discount int64
	// Number is the manual invoice number; on edit it must match the stored one
	Number string
}

// ProformaFilter selects which proformas ListProformas returns
type ProformaFilter string

const (
	ProformasPending  ProformaFilter = "pending"
	ProformasArchived ProformaFilter = "archived"
	ProformasAll      ProformaFilter = "all"
)

// Numbering holds the automatic number prefixes per document kind
type Numbering struct {
	ProformaPrefix string
	InvoicePrefix  string
}

func (n Numbering) prefix(kind domain.Kind) string {
	p := n.ProformaPrefix
	if kind == domain.KindInvoice {
		p = n.InvoicePrefix
	}
	if p == "" {
		p = kind.DefaultPrefix()
	}
	return p
}

// DocumentService manages the proforma and invoice lifecycle
type DocumentService interface {
	// AddToDraft puts a catalog product on a draft being composed, merging
	// with an existing line for the same product
	AddToDraft(ctx context.Context, draft *Draft, productID string) (*domain.LineItem, error)

	// Create validates, numbers and stores a new document
	Create(ctx context.Context, kind domain.Kind, draft Draft) (domain.Record, error)

	// Edit replaces client, date, lines and discount of a stored document
	Edit(ctx context.Context, kind domain.Kind, id string, draft Draft) (domain.Record, error)

	// Line operations on a stored document
	AddLineItem(ctx context.Context, kind domain.Kind, id, productID string) (domain.Record, error)
	UpdateLineItem(ctx context.Context, kind domain.Kind, id, lineID string, field domain.LineField, value int64) (domain.Record, error)
	RemoveLineItem(ctx context.Context, kind domain.Kind, id, lineID string) (domain.Record, error)

	// Delete removes a document; linked documents are left untouched
	Delete(ctx context.Context, kind domain.Kind, id string) error

	// Get looks a document up by id or number
	Get(ctx context.Context, kind domain.Kind, ref string) (domain.Record, error)
	GetProforma(ctx context.Context, ref string) (*domain.Proforma, error)
	GetInvoice(ctx context.Context, ref string) (*domain.Invoice, error)

	// Listing, newest first
	ListProformas(ctx context.Context, filter ProformaFilter, search string) ([]*domain.Proforma, error)
	ListInvoices(ctx context.Context, search string) ([]*domain.Invoice, error)

	// ConvertToInvoice creates an invoice from a pending proforma and
	// archives the proforma, in one atomic write
	ConvertToInvoice(ctx context.Context, proformaID string) (*domain.Invoice, *domain.Proforma, error)

	// MarkProformaPaid archives a pending proforma as settled without an invoice
	MarkProformaPaid(ctx context.Context, proformaID string) (*domain.Proforma, error)

	// CancelProforma archives a pending proforma as cancelled
	CancelProforma(ctx context.Context, proformaID string) (*domain.Proforma, error)

	// CancelInvoice voids an invoice that has no recorded payment
	CancelInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}

type documentService struct {
	store     repository.Committer
	products  repository.ProductRepository
	clients   repository.ClientRepository
	proformas repository.ProformaRepository
	invoices  repository.InvoiceRepository
	settings  repository.SettingsRepository
	numbering Numbering
	now       func() time.Time
	log       zerolog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	store repository.Committer,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	proformas repository.ProformaRepository,
	invoices repository.InvoiceRepository,
	settings repository.SettingsRepository,
	numbering Numbering,
) DocumentService {
	return &documentService{
		store:     store,
		products:  products,
		clients:   clients,
		proformas: proformas,
		invoices:  invoices,
		settings:  settings,
		numbering: numbering,
		now:       time.Now,
		log:       logger.WithComponent("documents"),
	}
}

func (s *documentService) AddToDraft(ctx context.Context, draft *Draft, productID string) (*domain.LineItem, error) {
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return draft.Items.Add(product), nil
}

func (s *documentService) Create(ctx context.Context, kind domain.Kind, draft Draft) (domain.Record, error) {
	recs, err := s.records(ctx, kind)
	if err != nil {
		return nil, err
	}

	var rec domain.Record
	date := draft.Date
	if date == "" {
		date = domain.Today(s.now())
	}
	switch kind {
	case domain.KindProforma:
		rec = domain.NewProforma(date)
	case domain.KindInvoice:
		rec = domain.NewInvoice(date)
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}

	if err := s.applyDraft(ctx, rec, draft); err != nil {
		return nil, err
	}

	number, err := s.assignNumber(ctx, kind, recs, draft.Number)
	if err != nil {
		return nil, err
	}
	rec.Base().Number = number

	recs = append(recs, rec)
	s.log.Info().
		Str("kind", string(kind)).
		Str("number", number).
		Int64("total", rec.Base().Total).
		Msg("document created")

	return rec, s.store.Commit(ctx, s.change(kind, recs))
}

func (s *documentService) Edit(ctx context.Context, kind domain.Kind, id string, draft Draft) (domain.Record, error) {
	recs, rec, err := s.editable(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	doc := rec.Base()
	if draft.Number != "" && !strings.EqualFold(normalizeNumber(draft.Number), doc.Number) {
		return nil, domain.NewValidationError("number", "cannot be changed after creation")
	}
	if err := s.applyDraft(ctx, rec, draft); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("number", doc.Number).
		Int64("total", doc.Total).
		Msg("document edited")

	return rec, s.store.Commit(ctx, s.change(kind, recs))
}

// applyDraft copies client, date, lines and discount onto rec, then
// recalculates and validates
func (s *documentService) applyDraft(ctx context.Context, rec domain.Record, draft Draft) error {
	doc := rec.Base()

	if strings.TrimSpace(draft.ClientID) == "" {
		return domain.NewValidationError("client", "is required")
	}
	clients, err := s.clients.List(ctx)
	if err != nil {
		return err
	}
	i := findIndex(clients, func(c *domain.Client) bool { return c.ID == draft.ClientID })
	if i < 0 {
		return domain.NewValidationError("client", "is not in the registry")
	}
	if len(draft.Items) == 0 {
		return domain.NewValidationError("items", "at least one product is required")
	}

	doc.SetClient(clients[i])
	if draft.Date != "" {
		doc.Date = draft.Date
	}
	doc.Items = draft.Items.Clone()
	doc.Discount = draft.Discount

	rec.CalculateTotals()
	return rec.Validate()
}

// assignNumber returns the next automatic number, or the validated manual
// number for invoices when manual numbering is enabled
func (s *documentService) assignNumber(ctx context.Context, kind domain.Kind, recs []domain.Record, manual string) (string, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}

	taken := func(n string) bool {
		for _, r := range recs {
			if strings.EqualFold(r.Base().Number, n) {
				return true
			}
		}
		return false
	}

	if kind == domain.KindInvoice && settings.ManualInvoiceNumbering {
		n := normalizeNumber(manual)
		if n == "" {
			return "", domain.NewValidationError("number", "is required when manual numbering is enabled")
		}
		if taken(n) {
			return "", &domain.DuplicateNumberError{Number: n}
		}
		return n, nil
	}

	if strings.TrimSpace(manual) != "" {
		return "", domain.NewValidationError("number", "manual numbering is disabled")
	}
	return s.nextNumber(kind, recs, taken), nil
}

// nextNumber is count-based. After a deletion the count can point at a
// number still in use; the index is bumped until the number is free.
func (s *documentService) nextNumber(kind domain.Kind, recs []domain.Record, taken func(string) bool) string {
	now := s.now()
	for i := len(recs); ; i++ {
		n := format.DocumentNumber(s.numbering.prefix(kind), i, now)
		if !taken(n) {
			return n
		}
	}
}

func (s *documentService) AddLineItem(ctx context.Context, kind domain.Kind, id, productID string) (domain.Record, error) {
	recs, rec, err := s.editable(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := rec.Base().Items.Add(product)
	rec.CalculateTotals()
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", rec.Base().Number).Str("product", product.Name).Int64("quantity", line.Quantity).Msg("line added")
	return rec, s.store.Commit(ctx, s.change(kind, recs))
}

func (s *documentService) UpdateLineItem(ctx context.Context, kind domain.Kind, id, lineID string, field domain.LineField, value int64) (domain.Record, error) {
	recs, rec, err := s.editable(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if _, err := rec.Base().Items.Update(lineID, field, value); err != nil {
		return nil, err
	}
	rec.CalculateTotals()
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", rec.Base().Number).Str("field", string(field)).Int64("value", value).Msg("line updated")
	return rec, s.store.Commit(ctx, s.change(kind, recs))
}

func (s *documentService) RemoveLineItem(ctx context.Context, kind domain.Kind, id, lineID string) (domain.Record, error) {
	recs, rec, err := s.editable(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	doc := rec.Base()
	if doc.Items.Find(lineID) != nil && len(doc.Items) == 1 {
		return nil, domain.NewValidationError("items", "cannot remove the last line of a document")
	}
	if err := doc.Items.Remove(lineID); err != nil {
		return nil, err
	}
	rec.CalculateTotals()
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", doc.Number).Msg("line removed")
	return rec, s.store.Commit(ctx, s.change(kind, recs))
}

func (s *documentService) Delete(ctx context.Context, kind domain.Kind, id string) error {
	recs, err := s.records(ctx, kind)
	if err != nil {
		return err
	}
	i := findRecord(recs, id)
	if i < 0 {
		return notFound(string(kind), id)
	}

	number := recs[i].Base().Number
	recs = append(recs[:i], recs[i+1:]...)

	s.log.Info().Str("kind", string(kind)).Str("number", number).Msg("document deleted")
	return s.store.Commit(ctx, s.change(kind, recs))
}

func (s *documentService) Get(ctx context.Context, kind domain.Kind, ref string) (domain.Record, error) {
	recs, err := s.records(ctx, kind)
	if err != nil {
		return nil, err
	}
	i := findRecord(recs, ref)
	if i < 0 {
		return nil, notFound(string(kind), ref)
	}
	return recs[i], nil
}

func (s *documentService) GetProforma(ctx context.Context, ref string) (*domain.Proforma, error) {
	rec, err := s.Get(ctx, domain.KindProforma, ref)
	if err != nil {
		return nil, err
	}
	return rec.(*domain.Proforma), nil
}

func (s *documentService) GetInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	rec, err := s.Get(ctx, domain.KindInvoice, ref)
	if err != nil {
		return nil, err
	}
	return rec.(*domain.Invoice), nil
}

func (s *documentService) ListProformas(ctx context.Context, filter ProformaFilter, search string) ([]*domain.Proforma, error) {
	all, err := s.proformas.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Proforma, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		p := all[i]
		switch filter {
		case ProformasPending:
			if p.IsArchived() {
				continue
			}
		case ProformasArchived:
			if !p.IsArchived() {
				continue
			}
		}
		if p.Matches(search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *documentService) ListInvoices(ctx context.Context, search string) ([]*domain.Invoice, error) {
	all, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Invoice, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Matches(search) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *documentService) ConvertToInvoice(ctx context.Context, proformaID string) (*domain.Invoice, *domain.Proforma, error) {
	proformas, err := s.proformas.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	i := findIndex(proformas, func(p *domain.Proforma) bool { return byRef(proformaID)(&p.Document) })
	if i < 0 {
		return nil, nil, notFound("proforma", proformaID)
	}
	p := proformas[i]

	// conversion always uses the automatic sequence
	recs := invoiceRecords(invoices)
	number := s.nextNumber(domain.KindInvoice, recs, func(n string) bool {
		return findRecord(recs, n) >= 0
	})

	inv := domain.NewInvoiceFromProforma(p, number)
	if err := p.MarkConverted(inv.ID); err != nil {
		return nil, nil, err
	}
	invoices = append(invoices, inv)

	s.log.Info().
		Str("proforma", p.Number).
		Str("invoice", inv.Number).
		Int64("total", inv.Total).
		Msg("proforma converted")

	err = s.store.Commit(ctx,
		s.invoices.Change(invoices),
		s.proformas.Change(proformas),
	)
	return inv, p, err
}

func (s *documentService) MarkProformaPaid(ctx context.Context, proformaID string) (*domain.Proforma, error) {
	return s.settleProforma(ctx, proformaID, "proforma marked paid", (*domain.Proforma).MarkPaid)
}

func (s *documentService) CancelProforma(ctx context.Context, proformaID string) (*domain.Proforma, error) {
	return s.settleProforma(ctx, proformaID, "proforma cancelled", (*domain.Proforma).Cancel)
}

func (s *documentService) settleProforma(ctx context.Context, ref, msg string, apply func(*domain.Proforma) error) (*domain.Proforma, error) {
	proformas, err := s.proformas.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(proformas, func(p *domain.Proforma) bool { return byRef(ref)(&p.Document) })
	if i < 0 {
		return nil, notFound("proforma", ref)
	}
	p := proformas[i]

	if err := apply(p); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", p.Number).Str("status", string(p.Status)).Msg(msg)
	return p, s.proformas.Replace(ctx, proformas)
}

func (s *documentService) CancelInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(invoices, func(inv *domain.Invoice) bool { return byRef(invoiceID)(&inv.Document) })
	if i < 0 {
		return nil, notFound("invoice", invoiceID)
	}
	inv := invoices[i]

	if err := inv.Cancel(); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", inv.Number).Msg("invoice cancelled")
	return inv, s.invoices.Replace(ctx, invoices)
}

// editable loads the collection of kind and the record with the given
// id or number, failing when the record is locked
func (s *documentService) editable(ctx context.Context, kind domain.Kind, ref string) ([]domain.Record, domain.Record, error) {
	recs, err := s.records(ctx, kind)
	if err != nil {
		return nil, nil, err
	}
	i := findRecord(recs, ref)
	if i < 0 {
		return nil, nil, notFound(string(kind), ref)
	}
	rec := recs[i]
	if !rec.CanEdit() {
		return nil, nil, fmt.Errorf("%w: %s %s is %s", domain.ErrDocumentLocked, kind, rec.Base().Number, rec.Base().Status.Label())
	}
	return recs, rec, nil
}

func (s *documentService) activeProduct(ctx context.Context, productID string) (*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(products, func(p *domain.Product) bool { return p.ID == productID })
	if i < 0 {
		return nil, notFound("product", productID)
	}
	if !products[i].IsActive {
		return nil, domain.NewValidationError("product", products[i].Name+" is inactive")
	}
	return products[i], nil
}

// records loads the collection of kind behind the Record interface
func (s *documentService) records(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	switch kind {
	case domain.KindProforma:
		items, err := s.proformas.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Record, len(items))
		for i, p := range items {
			out[i] = p
		}
		return out, nil
	case domain.KindInvoice:
		items, err := s.invoices.List(ctx)
		if err != nil {
			return nil, err
		}
		return invoiceRecords(items), nil
	}
	return nil, fmt.Errorf("unknown document kind %q", kind)
}

// change converts records back into the typed snapshot of their collection
func (s *documentService) change(kind domain.Kind, recs []domain.Record) repository.Change {
	if kind == domain.KindInvoice {
		out := make([]*domain.Invoice, len(recs))
		for i, r := range recs {
			out[i] = r.(*domain.Invoice)
		}
		return s.invoices.Change(out)
	}
	out := make([]*domain.Proforma, len(recs))
	for i, r := range recs {
		out[i] = r.(*domain.Proforma)
	}
	return s.proformas.Change(out)
}

func invoiceRecords(items []*domain.Invoice) []domain.Record {
	out := make([]domain.Record, len(items))
	for i, inv := range items {
		out[i] = inv
	}
	return out
}

func findRecord(recs []domain.Record, ref string) int {
	match := byRef(ref)
	for i, r := range recs {
		if match(r.Base()) {
			return i
		}
	}
	return -1
}
