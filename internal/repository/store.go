package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/logger"
)

// AppName is written into every backup file
const AppName = "Pharmacie Nouvelle"

// DBVersion is the schema version of the stored collections
const DBVersion = "2.0"

// Storage keys, unchanged from earlier releases so backups stay portable
const (
	KeyVersion     = "pn_db_version"
	KeyProducts    = "pn_products_v2"
	KeyClients     = "pn_clients_v2"
	KeyProformas   = "pn_proformas_v2"
	KeyInvoices    = "pn_invoices_v2"
	KeySettings    = "pn_settings_v2"
	KeyCompanyInfo = "pn_company_info_v2"
	KeyHasUserData = "pn_has_user_data"
)

// StorageKeys lists every key in backup order
var StorageKeys = []string{
	KeyVersion,
	KeyProducts,
	KeyClients,
	KeyProformas,
	KeyInvoices,
	KeySettings,
	KeyCompanyInfo,
	KeyHasUserData,
}

// Change is one collection snapshot to be written by Commit. Raw
// changes carry a string Value that is stored as is, without JSON encoding.
type Change struct {
	Key   string
	Value any
	Raw   bool
}

// Store is the typed persistence contract over a KV
type Store struct {
	kv  KV
	log zerolog.Logger
}

// NewStore creates a Store. Call Initialize before first use.
func NewStore(kv KV) *Store {
	return &Store{
		kv:  kv,
		log: logger.WithComponent("store"),
	}
}

// Commit writes every change in one atomic KV call and marks the store
// as holding user data. A failed write is returned as *domain.StorageError.
func (s *Store) Commit(ctx context.Context, changes ...Change) error {
	entries := make(map[string]string, len(changes)+1)
	for _, c := range changes {
		if c.Raw {
			v, ok := c.Value.(string)
			if !ok {
				return fmt.Errorf("raw value for %s must be a string", c.Key)
			}
			entries[c.Key] = v
			continue
		}
		raw, err := json.Marshal(c.Value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", c.Key, err)
		}
		entries[c.Key] = string(raw)
	}
	entries[KeyHasUserData] = "true"

	if err := s.kv.Put(ctx, entries); err != nil {
		s.log.Error().Err(err).Str("keys", keyList(entries)).Msg("commit failed")
		return &domain.StorageError{Op: "commit " + keyList(entries), Err: err}
	}
	s.log.Debug().Str("keys", keyList(entries)).Msg("committed")
	return nil
}

// Initialize seeds the factory defaults exactly once, on a store that
// has never held user data. It reports whether seeding happened.
func (s *Store) Initialize(ctx context.Context) (bool, error) {
	has, err := s.HasUserData(ctx)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	s.log.Warn().Msg("empty store, seeding factory defaults")
	err = s.Commit(ctx,
		Change{Key: KeyProducts, Value: domain.DefaultProducts()},
		Change{Key: KeyCompanyInfo, Value: domain.DefaultCompanyInfo()},
		Change{Key: KeyClients, Value: []*domain.Client{}},
		Change{Key: KeyProformas, Value: []*domain.Proforma{}},
		Change{Key: KeyInvoices, Value: []*domain.Invoice{}},
		Change{Key: KeySettings, Value: domain.DefaultSettings()},
		Change{Key: KeyVersion, Value: DBVersion, Raw: true},
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasUserData reports whether anything was ever saved to the store
func (s *Store) HasUserData(ctx context.Context) (bool, error) {
	v, ok, err := s.kv.Get(ctx, KeyHasUserData)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", KeyHasUserData, err)
	}
	return ok && v == "true", nil
}

// load decodes the value stored under key into dst. It reports false
// and leaves dst untouched when the key was never written.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("stored collection is corrupt")
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
