// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.Gemini.Model)
	}
	if cfg.Gemini.RequestTimeoutSecs != 30 || cfg.Gemini.ResourceTimeoutSecs != 45 {
		t.Errorf("unexpected default timeouts: %d/%d",
			cfg.Gemini.RequestTimeoutSecs, cfg.Gemini.ResourceTimeoutSecs)
	}
}

func TestLoadFromPath_PartialFileFilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "log_level = \"debug\"\n\n[gemini]\nmodel = \"gemini-exp\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %s", cfg.LogLevel)
	}
	if cfg.Gemini.Model != "gemini-exp" {
		t.Errorf("expected overridden model, got %s", cfg.Gemini.Model)
	}
	// Unset fields keep defaults.
	if cfg.Gemini.BaseURL == "" {
		t.Error("base URL should fall back to default")
	}
}

func TestLoadFromPath_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not == toml {"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error for malformed file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BIBLIACORE_GEMINI_MODEL", "gemini-env")
	t.Setenv("BIBLIACORE_GEMINI_TIMEOUT_SECS", "10")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Gemini.Model != "gemini-env" {
		t.Errorf("env model override not applied: %s", cfg.Gemini.Model)
	}
	if cfg.Gemini.RequestTimeoutSecs != 10 {
		t.Errorf("env timeout override not applied: %d", cfg.Gemini.RequestTimeoutSecs)
	}
}

func TestValidate_TimeoutOrdering(t *testing.T) {
	cfg := Default()
	cfg.Gemini.RequestTimeoutSecs = 60
	cfg.Gemini.ResourceTimeoutSecs = 45
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when resource timeout < request timeout")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "warn"

	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFromPath(Path(cfg.DataDir))
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.LogLevel != "warn" {
		t.Errorf("round trip lost log level: %s", loaded.LogLevel)
	}

	info, err := os.Stat(Path(cfg.DataDir))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file should be 0600, got %o", perm)
	}
}
