package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func TestBackendConfigCarriesSyncStrategy(t *testing.T) {
	old := configSyncStrategy
	t.Cleanup(func() { configSyncStrategy = old })

	tests := []struct {
		name     string
		strategy string
		want     string
	}{
		{"unset defaults to immediate", "", types.SyncImmediate},
		{"immediate", types.SyncImmediate, types.SyncImmediate},
		{"on_close", types.SyncOnClose, types.SyncOnClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configSyncStrategy = tt.strategy
			cfg := backendConfig("/tmp/data")
			if err := cfg.Validate(); err != nil {
				t.Fatal(err)
			}
			if got := cfg.GetSyncStrategy(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if cfg.DataDir != "/tmp/data" {
				t.Fatalf("unexpected data dir %q", cfg.DataDir)
			}
		})
	}
}

func TestLoadConfigReadsSyncStrategy(t *testing.T) {
	dir := t.TempDir()
	content := "backend: sqlite\nsync_strategy: on_close\n"
	if err := os.WriteFile(filepath.Join(dir, configFileExt), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GetString(cfgKeySyncStrategy); got != types.SyncOnClose {
		t.Fatalf("expected %q, got %q", types.SyncOnClose, got)
	}
}
