// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides application configuration for bibliacore.
//
// Configuration is loaded from ~/.bibliacore/config.toml with built-in
// defaults and environment variable overrides. The Gemini API key is NOT
// part of this file; it lives in the credential vault (internal/secrets).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/nexubible/bibliacore/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete bibliacore configuration.
type Config struct {
	// DataDir is where the kv database, vault and caches live.
	// Default: ~/.bibliacore
	DataDir string `toml:"data_dir"`

	// LogLevel is the logrus level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	Datasets DatasetsConfig `toml:"datasets"`
	Gemini   GeminiConfig   `toml:"gemini"`
}

// DatasetsConfig points at the bundled read-only content files.
type DatasetsConfig struct {
	// BiblePath is the scripture dataset JSON file.
	BiblePath string `toml:"bible_path"`
	// EncyclopediaPath is the reference dataset JSON file.
	EncyclopediaPath string `toml:"encyclopedia_path"`
	// LocationsPath is the map locations dataset JSON file.
	LocationsPath string `toml:"locations_path"`
	// Watch enables hot reload of the reference datasets on file change.
	Watch bool `toml:"watch"`
}

// GeminiConfig contains the outbound AI endpoint configuration.
type GeminiConfig struct {
	// BaseURL is the generative language API root.
	BaseURL string `toml:"base_url"`
	// Model is the model identifier appended to the URL path.
	Model string `toml:"model"`
	// RequestTimeoutSecs bounds a single request (connect + headers).
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// ResourceTimeoutSecs bounds the whole call including body transfer.
	ResourceTimeoutSecs int `toml:"resource_timeout_secs"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with built-in default values.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		Datasets: DatasetsConfig{
			BiblePath:        filepath.Join(dataDir, "data", "biblia_1914.json"),
			EncyclopediaPath: filepath.Join(dataDir, "data", "encyclopedia_ro.json"),
			LocationsPath:    filepath.Join(dataDir, "data", "biblical_locations.json"),
			Watch:            false,
		},
		Gemini: GeminiConfig{
			BaseURL:             "https://generativelanguage.googleapis.com/v1beta/models",
			Model:               "gemini-2.5-flash",
			RequestTimeoutSecs:  30,
			ResourceTimeoutSecs: 45,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bibliacore")
	}
	return filepath.Join(home, ".bibliacore")
}

// Path returns the config file location for the given data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file under the default data directory, falling back
// to defaults when the file is missing. Environment overrides apply last.
func Load() (*Config, error) {
	return LoadFromPath(Path(defaultDataDir()))
}

// LoadFromPath loads configuration from an explicit TOML file. A missing
// file is not an error: defaults are returned. A malformed file is.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		ensureSecurePermissions(path)
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as TOML under its data directory. Written 0600:
// the file is per-user state.
func (c *Config) Save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(Path(c.DataDir), buf.Bytes(), 0600)
}

// =============================================================================
// OVERRIDES, DEFAULT FILL, VALIDATION
// =============================================================================

// applyEnvOverrides applies BIBLIACORE_* environment variables on top of
// whatever was loaded.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BIBLIACORE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("BIBLIACORE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BIBLIACORE_GEMINI_BASE_URL"); v != "" {
		c.Gemini.BaseURL = v
	}
	if v := os.Getenv("BIBLIACORE_GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("BIBLIACORE_GEMINI_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Gemini.RequestTimeoutSecs = n
		}
	}
}

// setDefaults fills zero values left by a partial config file.
func (c *Config) setDefaults() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Datasets.BiblePath == "" {
		c.Datasets.BiblePath = d.Datasets.BiblePath
	}
	if c.Datasets.EncyclopediaPath == "" {
		c.Datasets.EncyclopediaPath = d.Datasets.EncyclopediaPath
	}
	if c.Datasets.LocationsPath == "" {
		c.Datasets.LocationsPath = d.Datasets.LocationsPath
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = d.Gemini.BaseURL
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.RequestTimeoutSecs <= 0 {
		c.Gemini.RequestTimeoutSecs = d.Gemini.RequestTimeoutSecs
	}
	if c.Gemini.ResourceTimeoutSecs <= 0 {
		c.Gemini.ResourceTimeoutSecs = d.Gemini.ResourceTimeoutSecs
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Gemini.BaseURL == "" {
		return fmt.Errorf("gemini.base_url must not be empty")
	}
	if c.Gemini.ResourceTimeoutSecs < c.Gemini.RequestTimeoutSecs {
		return fmt.Errorf("gemini.resource_timeout_secs (%d) must be >= request_timeout_secs (%d)",
			c.Gemini.ResourceTimeoutSecs, c.Gemini.RequestTimeoutSecs)
	}
	return nil
}

// ensureSecurePermissions tightens config file permissions to 0600. The
// file holds no secrets but is per-user preference state.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != 0600 {
		_ = os.Chmod(path, 0600)
	}
}
