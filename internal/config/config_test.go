package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Documents.ProformaPrefix != "PRO" || cfg.Documents.InvoicePrefix != "INV" {
		t.Fatalf("unexpected prefixes %q/%q", cfg.Documents.ProformaPrefix, cfg.Documents.InvoicePrefix)
	}
	if filepath.Base(cfg.Database.Path) != "pharmabill.db" {
		t.Fatalf("unexpected database path %s", cfg.Database.Path)
	}
	if filepath.Ext(cfg.Log.Output) != ".log" {
		t.Fatalf("expected file log output by default, got %s", cfg.Log.Output)
	}
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "documents:\n  invoice_prefix: FAC\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Documents.InvoicePrefix != "FAC" {
		t.Fatalf("expected FAC, got %s", cfg.Documents.InvoicePrefix)
	}
	if cfg.Documents.ProformaPrefix != "PRO" {
		t.Fatalf("expected default proforma prefix kept, got %s", cfg.Documents.ProformaPrefix)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogOutput, "stderr")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Fatalf("expected env database path, got %s", cfg.Database.Path)
	}

	lc := cfg.Logging()
	if lc.Level != "warn" || lc.Format != "json" || lc.Output != "stderr" {
		t.Fatalf("unexpected logger config %+v", lc)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [unclosed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "data", "pharmabill.db")
	cfg.Documents.ExportDir = filepath.Join(dir, "exports")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, d := range []string{filepath.Join(dir, "data"), cfg.Documents.ExportDir} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s", d)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Database.Path != cfg.Database.Path {
		t.Fatalf("expected %s, got %s", cfg.Database.Path, loaded.Database.Path)
	}
}
