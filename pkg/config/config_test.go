package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDecodeRejectsUnknownFields(t *testing.T) {
	cfg := DefaultConfig()
	err := decodeStrict(strings.NewReader("settings:\n  stop_early: true\n"), cfg)
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartgw.yaml")
	content := `
settings:
  stop_on_first_success: true
  persist_storage: false
  timeout: 1500ms
gateways:
  defaults:
    - https://dweb.link
ranking:
  retry_count: 2
storage:
  backend: sqlite
  path: /tmp/store.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	live := cfg.LiveSettings().Settings()
	if !live.StopOnFirstSuccess || live.PersistStorage || live.Timeout != 1500*time.Millisecond {
		t.Errorf("unexpected settings %+v", live)
	}
	if len(cfg.Gateways.Defaults) != 1 || cfg.Gateways.Defaults[0] != "https://dweb.link" {
		t.Errorf("unexpected defaults %v", cfg.Gateways.Defaults)
	}
	if cfg.Ranking.RetryCount != 2 {
		t.Errorf("Expected retry count 2, got %d", cfg.Ranking.RetryCount)
	}
	// untouched sections keep their defaults
	if cfg.Gateways.MaxUserGateways != DefaultMaxUserGateways {
		t.Errorf("Expected default cap, got %d", cfg.Gateways.MaxUserGateways)
	}
	if cfg.Ranking.RetryDelay != time.Second {
		t.Errorf("Expected default retry delay, got %s", cfg.Ranking.RetryDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.ListenAddr != DefaultConfig().HTTP.ListenAddr {
		t.Errorf("Expected default listen address, got %q", cfg.HTTP.ListenAddr)
	}
}
