package db

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pharmabill.db")

	database, err := Open(path, "s3cret&key")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// running twice is a no-op
	if err := database.RunMigrations(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	v, err := database.SchemaVersion()
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), v)
	}

	if _, err := database.Exec("INSERT INTO collections (key, value) VALUES ('k', 'v')"); err != nil {
		t.Fatalf("collections table missing: %v", err)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pharmabill.db")

	database, err := Open(path, "right")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.Exec("INSERT INTO collections (key, value) VALUES ('marker', 'PLAINTEXT-MARKER')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	database.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if bytes.HasPrefix(raw, []byte("SQLite format 3")) {
		t.Fatalf("expected an encrypted file, found a plain SQLite header")
	}
	if bytes.Contains(raw, []byte("PLAINTEXT-MARKER")) {
		t.Fatalf("expected stored values to be encrypted")
	}

	if wrong, err := Open(path, "wrong"); err == nil {
		wrong.Close()
		t.Fatalf("expected error opening with the wrong key")
	}
}
