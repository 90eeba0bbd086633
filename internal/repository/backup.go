package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andy/pharmabill/internal/domain"
)

// Backup is the export file layout
type Backup struct {
	AppName   string             `json:"appName"`
	DBVersion string             `json:"db_version"`
	Timestamp string             `json:"timestamp"`
	Data      map[string]*string `json:"data"`
}

const backupTimeLayout = "2006-01-02T15:04:05.000Z"

// BackupFileName returns the suggested export file name for the given day
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("SAUVEGARDE_PHARMACIE_%s.json", now.Format("2006_01_02"))
}

// Export serializes every storage key. Keys never written are exported as null.
func (s *Store) Export(ctx context.Context, now time.Time) ([]byte, error) {
	all, err := s.kv.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	data := make(map[string]*string, len(StorageKeys))
	for _, key := range StorageKeys {
		if v, ok := all[key]; ok {
			data[key] = &v
		} else {
			data[key] = nil
		}
	}

	out, err := json.MarshalIndent(Backup{
		AppName:   AppName,
		DBVersion: DBVersion,
		Timestamp: now.UTC().Format(backupTimeLayout),
		Data:      data,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info().Int("bytes", len(out)).Msg("backup exported")
	return out, nil
}

// decoders checks that a recognized value has its typed shape
var decoders = map[string]func(raw []byte) error{
	KeyProducts:    decodeInto[[]*domain.Product],
	KeyClients:     decodeInto[[]*domain.Client],
	KeyProformas:   decodeInto[[]*domain.Proforma],
	KeyInvoices:    decodeInto[[]*domain.Invoice],
	KeySettings:    decodeInto[domain.Settings],
	KeyCompanyInfo: decodeInto[domain.CompanyInfo],
	KeyVersion:     func([]byte) error { return nil },
	KeyHasUserData: func([]byte) error { return nil },
}

func decodeInto[T any](raw []byte) error {
	var v T
	return json.Unmarshal(raw, &v)
}

// Import validates a backup, wrapped or in the bare legacy form, and
// replaces the whole store with it in one atomic write. Nothing is
// written when validation fails.
func (s *Store) Import(ctx context.Context, payload []byte) error {
	data, err := parseBackup(payload)
	if err != nil {
		return err
	}

	entries := make(map[string]string, len(data))
	for key, raw := range data {
		check, known := decoders[key]
		if !known {
			s.log.Warn().Str("key", key).Msg("ignoring unknown backup key")
			continue
		}

		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			return &domain.ImportFormatError{Reason: fmt.Sprintf("%s must be a string or null", key), Err: err}
		}
		if value == nil {
			continue
		}
		if err := check([]byte(*value)); err != nil {
			return &domain.ImportFormatError{Reason: fmt.Sprintf("%s has an unexpected shape", key), Err: err}
		}
		entries[key] = *value
	}

	if len(entries) == 0 {
		return &domain.ImportFormatError{Reason: "no recognized collection"}
	}
	if _, ok := entries[KeyHasUserData]; !ok {
		entries[KeyHasUserData] = "true"
	}

	if err := s.kv.Replace(ctx, entries); err != nil {
		s.log.Error().Err(err).Msg("import write failed")
		return &domain.StorageError{Op: "import", Err: err}
	}

	s.log.Info().Str("keys", keyList(entries)).Msg("backup imported")
	return nil
}

// parseBackup returns the data map of a wrapped backup, or the object
// itself for the bare legacy form
func parseBackup(payload []byte) (map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, &domain.ImportFormatError{Reason: "not a JSON object", Err: err}
	}
	if top == nil {
		return nil, &domain.ImportFormatError{Reason: "not a JSON object"}
	}

	raw, ok := top["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return top, nil
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &domain.ImportFormatError{Reason: "data must be an object", Err: err}
	}
	return data, nil
}

// Reset wipes every key. The next Initialize seeds the defaults again.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("reset failed")
		return &domain.StorageError{Op: "reset", Err: err}
	}
	s.log.Warn().Msg("all data erased")
	return nil
}
