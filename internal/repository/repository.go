package repository

import (
	"context"

	"github.com/andy/pharmabill/internal/domain"
)

// KV is the raw key-value store. Every collection is one JSON string
// stored under its storage key.
type KV interface {
	// Get returns the raw value for key; ok is false when the key was never written
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// All returns every stored key and value
	All(ctx context.Context) (map[string]string, error)
	// Put writes all entries in one atomic step
	Put(ctx context.Context, entries map[string]string) error
	// Replace wipes the store and writes entries in one atomic step
	Replace(ctx context.Context, entries map[string]string) error
	// Clear removes every key
	Clear(ctx context.Context) error
}

// Committer writes several collection snapshots in one atomic step
type Committer interface {
	Commit(ctx context.Context, changes ...Change) error
}

// CollectionRepository persists an ordered collection of records
type CollectionRepository[T any] interface {
	// List returns the stored collection, empty when never written
	List(ctx context.Context) ([]*T, error)
	// Replace overwrites the whole collection
	Replace(ctx context.Context, items []*T) error
	// Change prepares a snapshot for a multi-collection Commit
	Change(items []*T) Change
}

// ObjectRepository persists a single settings-like record
type ObjectRepository[T any] interface {
	// Get returns the stored record, or its default when never written
	Get(ctx context.Context) (*T, error)
	Save(ctx context.Context, v *T) error
	Change(v *T) Change
}

type (
	ProductRepository  = CollectionRepository[domain.Product]
	ClientRepository   = CollectionRepository[domain.Client]
	ProformaRepository = CollectionRepository[domain.Proforma]
	InvoiceRepository  = CollectionRepository[domain.Invoice]
	SettingsRepository = ObjectRepository[domain.Settings]
	CompanyRepository  = ObjectRepository[domain.CompanyInfo]
)
