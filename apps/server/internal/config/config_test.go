package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.Ledger.Mode != "sqlite" {
		t.Fatalf("unexpected default ledger mode %q", cfg.Ledger.Mode)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	raw := []byte("addr: \":9090\"\nledger:\n  mode: postgres\n  dsn: postgres://localhost/mj\nnpc:\n  persona_file: roster.json\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LEDGER_MODE", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("file addr not applied: %q", cfg.Addr)
	}
	// Environment wins over the file.
	if cfg.Ledger.Mode != "memory" {
		t.Fatalf("env override not applied: %q", cfg.Ledger.Mode)
	}
	if cfg.NPC.PersonaFile != "roster.json" {
		t.Fatalf("persona file not parsed: %q", cfg.NPC.PersonaFile)
	}
}

func TestLoadRejectsUnknownLedgerMode(t *testing.T) {
	t.Setenv("LEDGER_MODE", "oracle")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected invalid ledger mode to fail")
	}
}
