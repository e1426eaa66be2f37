// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexubible/bibliacore/internal/kvstore"
	"github.com/nexubible/bibliacore/internal/logging"
	"github.com/nexubible/bibliacore/internal/secrets"
)

func newTestEnv(t *testing.T) (*kvstore.Store, secrets.Vault) {
	t.Helper()
	dir := t.TempDir()
	kv, err := kvstore.OpenPath(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv, secrets.NewFileVault(dir)
}

func TestFirstRunDefaults(t *testing.T) {
	kv, vault := newTestEnv(t)
	store := NewStore(kv, vault, logging.Discard())

	cur := store.Current()
	require.Equal(t, ThemeSystem, cur.Theme)
	require.Equal(t, FontSizeBase, cur.FontSize)
	require.Equal(t, FontSerif, cur.FontFamily)
	require.True(t, cur.TwoColumnLayout)
	require.Empty(t, cur.GeminiAPIKey)
}

func TestCorruptBlobFallsBackToDefaults(t *testing.T) {
	kv, vault := newTestEnv(t)
	require.NoError(t, kv.Put("user_settings", []byte("{broken")))

	store := NewStore(kv, vault, logging.Discard())
	require.Equal(t, Defaults().Theme, store.Current().Theme)
}

func TestCredentialNeverInBlob(t *testing.T) {
	kv, vault := newTestEnv(t)
	store := NewStore(kv, vault, logging.Discard())

	require.NoError(t, store.Update(func(s *Settings) {
		s.Theme = ThemeDark
		s.GeminiAPIKey = "AIzaSy-secret"
	}))

	blob, ok, err := kv.Get("user_settings")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, string(blob), "AIzaSy-secret")

	// But the vault has it.
	key, ok := vault.Load()
	require.True(t, ok)
	require.Equal(t, "AIzaSy-secret", key)
}

func TestCredentialRehydratedOnLoad(t *testing.T) {
	kv, vault := newTestEnv(t)

	first := NewStore(kv, vault, logging.Discard())
	require.NoError(t, first.Update(func(s *Settings) {
		s.GeminiAPIKey = "persisted-key"
		s.FontSize = FontSizeXL
	}))

	// Fresh store over the same persistence.
	second := NewStore(kv, vault, logging.Discard())
	cur := second.Current()
	require.Equal(t, "persisted-key", cur.GeminiAPIKey)
	require.Equal(t, FontSizeXL, cur.FontSize)
}

func TestEmptyCredentialDeletesVaultEntry(t *testing.T) {
	kv, vault := newTestEnv(t)
	store := NewStore(kv, vault, logging.Discard())

	require.NoError(t, store.Update(func(s *Settings) { s.GeminiAPIKey = "temp" }))
	require.NoError(t, store.Update(func(s *Settings) { s.GeminiAPIKey = "" }))

	_, ok := vault.Load()
	require.False(t, ok)
}

func TestFontSizePoints(t *testing.T) {
	require.Equal(t, 14, FontSizeSM.Points())
	require.Equal(t, 17, FontSizeBase.Points())
	require.Equal(t, 20, FontSizeLG.Points())
	require.Equal(t, 24, FontSizeXL.Points())
	require.Equal(t, 28, FontSizeXXL.Points())
}
