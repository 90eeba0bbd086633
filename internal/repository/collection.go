package repository

import (
	"context"

	"github.com/andy/pharmabill/internal/domain"
)

// Collection is a CollectionRepository stored as one JSON array
type Collection[T any] struct {
	store *Store
	key   string
}

// NewCollection creates a Collection stored under key
func NewCollection[T any](store *Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	var items []*T
	if _, err := c.store.load(ctx, c.key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*T{}
	}
	return items, nil
}

func (c *Collection[T]) Replace(ctx context.Context, items []*T) error {
	return c.store.Commit(ctx, c.Change(items))
}

func (c *Collection[T]) Change(items []*T) Change {
	if items == nil {
		items = []*T{}
	}
	return Change{Key: c.key, Value: items}
}

// Object is an ObjectRepository stored as one JSON object
type Object[T any] struct {
	store *Store
	key   string
	def   func() *T
}

// NewObject creates an Object stored under key; def supplies the value
// returned before the first save and the base that stored fields overlay.
func NewObject[T any](store *Store, key string, def func() *T) *Object[T] {
	return &Object[T]{store: store, key: key, def: def}
}

func (o *Object[T]) Get(ctx context.Context) (*T, error) {
	v := o.def()
	if _, err := o.store.load(ctx, o.key, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (o *Object[T]) Save(ctx context.Context, v *T) error {
	return o.store.Commit(ctx, o.Change(v))
}

func (o *Object[T]) Change(v *T) Change {
	return Change{Key: o.key, Value: v}
}

// NewProductRepo creates the product catalog repository
func NewProductRepo(store *Store) *Collection[domain.Product] {
	return NewCollection[domain.Product](store, KeyProducts)
}

// NewClientRepo creates the client registry repository
func NewClientRepo(store *Store) *Collection[domain.Client] {
	return NewCollection[domain.Client](store, KeyClients)
}

// NewProformaRepo creates the proforma repository
func NewProformaRepo(store *Store) *Collection[domain.Proforma] {
	return NewCollection[domain.Proforma](store, KeyProformas)
}

// NewInvoiceRepo creates the invoice repository
func NewInvoiceRepo(store *Store) *Collection[domain.Invoice] {
	return NewCollection[domain.Invoice](store, KeyInvoices)
}

// NewSettingsRepo creates the settings repository
func NewSettingsRepo(store *Store) *Object[domain.Settings] {
	return NewObject(store, KeySettings, domain.DefaultSettings)
}

// NewCompanyRepo creates the company identity repository. Before the
// first save it returns an empty identity.
func NewCompanyRepo(store *Store) *Object[domain.CompanyInfo] {
	return NewObject(store, KeyCompanyInfo, func() *domain.CompanyInfo { return &domain.CompanyInfo{} })
}
