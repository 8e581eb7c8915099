package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Tools.DumpBin != "pw-dump" || cfg.Tools.CliBin != "pw-cli" {
		t.Errorf("default tools = %+v, want pw-dump/pw-cli", cfg.Tools)
	}
	if cfg.stageTimeout() != 2*time.Second {
		t.Errorf("default stage timeout = %v, want 2s", cfg.stageTimeout())
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
tools:
  dump_bin: /usr/local/bin/pw-dump
  remote: pipewire-1
timeouts:
  stage_ms: 500
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Tools.DumpBin != "/usr/local/bin/pw-dump" {
		t.Errorf("dump_bin = %q, want override", cfg.Tools.DumpBin)
	}
	if cfg.Tools.CliBin != "pw-cli" {
		t.Errorf("cli_bin = %q, want default retained", cfg.Tools.CliBin)
	}
	if cfg.Tools.Remote != "pipewire-1" {
		t.Errorf("remote = %q, want pipewire-1", cfg.Tools.Remote)
	}
	if cfg.stageTimeout() != 500*time.Millisecond {
		t.Errorf("stage timeout = %v, want 500ms", cfg.stageTimeout())
	}
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	path := writeConfig(t, "timeouts:\n  stage_ms: -1\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("negative stage_ms accepted, want error")
	}
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("invalid logging.level accepted, want error")
	}
}

func TestLoadConfigExplicitPathMustExist(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing explicit config accepted, want error")
	}
}

func TestLoadConfigDefaultPathMayBeAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("absent conventional config rejected: %v", err)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("fallback config invalid: %v", err)
	}
}
