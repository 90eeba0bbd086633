package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/pharmabill/internal/db"
)

// SQLiteKV is a KV backed by the collections table of the encrypted database
type SQLiteKV struct {
	db *db.DB
}

// NewSQLiteKV creates a new SQLiteKV
func NewSQLiteKV(database *db.DB) *SQLiteKV {
	return &SQLiteKV{db: database}
}

// Get retrieves the raw value stored under key
func (r *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// All retrieves every stored key
func (r *SQLiteKV) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM collections")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}
	return out, nil
}

// Put upserts every entry in a single transaction
func (r *SQLiteKV) Put(ctx context.Context, entries map[string]string) error {
	return r.inTx(ctx, false, entries)
}

// Replace deletes every key and writes entries in a single transaction
func (r *SQLiteKV) Replace(ctx context.Context, entries map[string]string) error {
	return r.inTx(ctx, true, entries)
}

// Clear deletes every key
func (r *SQLiteKV) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM collections"); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}
	return nil
}

func (r *SQLiteKV) inTx(ctx context.Context, wipe bool, entries map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if wipe {
		if _, err := tx.ExecContext(ctx, "DELETE FROM collections"); err != nil {
			return fmt.Errorf("failed to clear collections: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO collections (key, value, updated_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare write: %w", err)
	}
	defer stmt.Close()

	now := formatTime()
	for k, v := range entries {
		if _, err := stmt.ExecContext(ctx, k, v, now); err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", keyList(entries), err)
	}
	return nil
}
