package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/logger"
	"github.com/andy/pharmabill/internal/repository"
)

// CatalogService manages the product catalog and the client registry
type CatalogService interface {
	ListProducts(ctx context.Context, includeInactive bool, search string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	SetProductActive(ctx context.Context, id string, active bool) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListClients(ctx context.Context, search string) ([]*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

type catalogService struct {
	products repository.ProductRepository
	clients  repository.ClientRepository
	log      zerolog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products repository.ProductRepository, clients repository.ClientRepository) CatalogService {
	return &catalogService{
		products: products,
		clients:  clients,
		log:      logger.WithComponent("catalog"),
	}
}

func (s *catalogService) ListProducts(ctx context.Context, includeInactive bool, search string) ([]*domain.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if (includeInactive || p.IsActive) && p.Matches(search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(all, func(p *domain.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, notFound("product", id)
	}
	return all[i], nil
}

func (s *catalogService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	normalizeProduct(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = domain.NewID()
	}

	all = append(all, p)
	s.log.Info().Str("product", p.Name).Int64("price", p.UnitPrice).Msg("product created")
	return p, s.products.Replace(ctx, all)
}

func (s *catalogService) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	normalizeProduct(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(all, func(x *domain.Product) bool { return x.ID == p.ID })
	if i < 0 {
		return nil, notFound("product", p.ID)
	}

	all[i] = p
	s.log.Info().Str("product", p.Name).Msg("product updated")
	return p, s.products.Replace(ctx, all)
}

func (s *catalogService) SetProductActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(all, func(p *domain.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, notFound("product", id)
	}

	all[i].IsActive = active
	s.log.Info().Str("product", all[i].Name).Bool("active", active).Msg("product toggled")
	return all[i], s.products.Replace(ctx, all)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	all, err := s.products.List(ctx)
	if err != nil {
		return err
	}
	i := findIndex(all, func(p *domain.Product) bool { return p.ID == id })
	if i < 0 {
		return notFound("product", id)
	}

	s.log.Info().Str("product", all[i].Name).Msg("product deleted")
	return s.products.Replace(ctx, append(all[:i], all[i+1:]...))
}

func (s *catalogService) ListClients(ctx context.Context, search string) ([]*domain.Client, error) {
	all, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Client, 0, len(all))
	for _, c := range all {
		if c.Matches(search) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *catalogService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	all, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(all, func(c *domain.Client) bool { return c.ID == id })
	if i < 0 {
		return nil, notFound("client", id)
	}
	return all[i], nil
}

func (s *catalogService) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	normalizeClient(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	all, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = domain.NewID()
	}

	all = append(all, c)
	s.log.Info().Str("client", c.Name).Msg("client created")
	return c, s.clients.Replace(ctx, all)
}

// UpdateClient changes the registry entry only; documents keep the name
// they were issued with
func (s *catalogService) UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	normalizeClient(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	all, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	i := findIndex(all, func(x *domain.Client) bool { return x.ID == c.ID })
	if i < 0 {
		return nil, notFound("client", c.ID)
	}

	all[i] = c
	s.log.Info().Str("client", c.Name).Msg("client updated")
	return c, s.clients.Replace(ctx, all)
}

func (s *catalogService) DeleteClient(ctx context.Context, id string) error {
	all, err := s.clients.List(ctx)
	if err != nil {
		return err
	}
	i := findIndex(all, func(c *domain.Client) bool { return c.ID == id })
	if i < 0 {
		return notFound("client", id)
	}

	s.log.Info().Str("client", all[i].Name).Msg("client deleted")
	return s.clients.Replace(ctx, append(all[:i], all[i+1:]...))
}

func normalizeProduct(p *domain.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	p.Unit = strings.TrimSpace(p.Unit)
	p.Description = strings.TrimSpace(p.Description)
}

func normalizeClient(c *domain.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
}
