// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put("settings", []byte(`{"theme":"dark"}`)))

	val, ok, err := s.Get("settings")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"theme":"dark"}`, string(val))

	// Last writer wins.
	require.NoError(t, s.Put("settings", []byte(`{"theme":"light"}`)))
	val, _, _ = s.Get("settings")
	require.Equal(t, `{"theme":"light"}`, string(val))

	require.NoError(t, s.Delete("settings"))
	_, ok, err = s.Get("settings")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting again is a no-op.
	require.NoError(t, s.Delete("settings"))
}

func TestDurabilityAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("last_book", []byte("Ioan")))
	require.NoError(t, s.Close())

	s2, err := OpenPath(path)
	require.NoError(t, err)
	defer s2.Close()

	val, ok, err := s2.Get("last_book")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ioan", string(val))
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("a", []byte("1")))
	require.NoError(t, s.Put("b", []byte("2")))

	require.NoError(t, s.Reset())

	for _, key := range []string{"a", "b"} {
		_, ok, err := s.Get(key)
		require.NoError(t, err)
		require.False(t, ok, "key %q should be gone after reset", key)
	}
}

func TestJSONHelpers(t *testing.T) {
	s := openTestStore(t)

	in := map[string]string{"e1": "explicație"}
	require.NoError(t, s.PutJSON("ai_cache", in))

	var out map[string]string
	ok, err := s.GetJSON("ai_cache", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	// Absent key: ok=false, no error.
	ok, err = s.GetJSON("nothing", &out)
	require.NoError(t, err)
	require.False(t, ok)

	// Corrupt value is an error, not silent garbage.
	require.NoError(t, s.Put("bad", []byte("{not json")))
	_, err = s.GetJSON("bad", &out)
	require.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Put("k", nil), ErrClosed)
	_, _, err := s.Get("k")
	require.ErrorIs(t, err, ErrClosed)
}
