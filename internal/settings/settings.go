// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds user preferences and their persistence.
//
// The preference blob lives in the kv store under one key; the Gemini API
// key is split out into the credential vault on every save and rehydrated
// into the in-memory Settings on load. Saves are write-through: every
// observed change rewrites the whole blob.
package settings

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nexubible/bibliacore/internal/kvstore"
	"github.com/nexubible/bibliacore/internal/secrets"
)

// settingsKey is the kv blob key for the preference JSON.
const settingsKey = "user_settings"

// =============================================================================
// PREFERENCE ENUMS
// =============================================================================

// Theme selects the app color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DisplayName returns the Romanian UI label.
func (t Theme) DisplayName() string {
	switch t {
	case ThemeLight:
		return "Luminos"
	case ThemeDark:
		return "Întunecat"
	default:
		return "Sistem"
	}
}

// FontSize is the five-step reading size.
type FontSize string

const (
	FontSizeSM   FontSize = "sm"
	FontSizeBase FontSize = "base"
	FontSizeLG   FontSize = "lg"
	FontSizeXL   FontSize = "xl"
	FontSizeXXL  FontSize = "xxl"
)

// Points maps the step to its point size.
func (f FontSize) Points() int {
	switch f {
	case FontSizeSM:
		return 14
	case FontSizeLG:
		return 20
	case FontSizeXL:
		return 24
	case FontSizeXXL:
		return 28
	default:
		return 17
	}
}

// FontFamily is the reading typeface.
type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
	FontMono  FontFamily = "mono"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the in-memory user configuration.
//
// GeminiAPIKey is rehydrated from the vault; it is never serialized into
// the persisted blob (json:"-").
type Settings struct {
	Theme           Theme      `json:"theme"`
	FontSize        FontSize   `json:"font_size"`
	FontFamily      FontFamily `json:"font_family"`
	PreferStaticMap bool       `json:"prefer_static_map"`
	TwoColumnLayout bool       `json:"two_column_layout"`

	GeminiAPIKey string `json:"-"`
}

// Defaults returns the first-run configuration.
func Defaults() Settings {
	return Settings{
		Theme:           ThemeSystem,
		FontSize:        FontSizeBase,
		FontFamily:      FontSerif,
		PreferStaticMap: false,
		TwoColumnLayout: true,
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the current Settings value and its persistence.
type Store struct {
	mu      sync.RWMutex
	current Settings

	kv    *kvstore.Store
	vault secrets.Vault
	log   *logrus.Logger
}

// NewStore constructs a settings store and loads persisted state. A missing
// or undecodable blob yields defaults; a missing credential yields the
// unconfigured state.
func NewStore(kv *kvstore.Store, vault secrets.Vault, log *logrus.Logger) *Store {
	s := &Store{kv: kv, vault: vault, log: log}
	s.load()
	return s
}

// load merges the persisted blob with the vault credential.
func (s *Store) load() {
	loaded := Defaults()
	ok, err := s.kv.GetJSON(settingsKey, &loaded)
	if err != nil {
		s.log.WithError(err).Warn("settings blob unreadable, using defaults")
		loaded = Defaults()
	} else if !ok {
		loaded = Defaults()
	}

	if key, ok := s.vault.Load(); ok {
		loaded.GeminiAPIKey = key
	} else {
		loaded.GeminiAPIKey = ""
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
}

// Current returns a copy of the active settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to the settings and saves write-through. The whole blob
// is rewritten on every call; callers must not batch unbounded changes.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.current)
	return s.saveLocked()
}

// Save persists the current settings: credential to the vault (or deleted
// when empty), everything else as one kv blob.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	// Credential first, split out of the blob.
	if s.current.GeminiAPIKey != "" {
		if err := s.vault.Save(s.current.GeminiAPIKey); err != nil {
			s.log.WithError(err).Warn("failed to store credential in vault")
		}
	} else {
		if err := s.vault.Delete(); err != nil {
			s.log.WithError(err).Warn("failed to remove credential from vault")
		}
	}

	// The json:"-" tag guarantees the key never reaches the blob.
	if err := s.kv.PutJSON(settingsKey, s.current); err != nil {
		s.log.WithError(err).Warn("failed to persist settings blob")
		return err
	}
	return nil
}

// APIKey returns the configured credential, empty when unconfigured.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.GeminiAPIKey
}

// Reload re-reads persisted state, discarding in-memory changes.
func (s *Store) Reload() {
	s.load()
}
