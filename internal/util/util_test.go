// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "blob.json")

	if err := AtomicWriteFile(path, []byte("one"), 0644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("two"), 0644); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("expected %q, got %q", "two", string(data))
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected 1 file in dir, found %d", len(entries))
	}
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault", "key.bin")

	if err := AtomicWriteFileWithDir(path, []byte("secret"), 0600, 0700); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file mode 0600, got %o", perm)
	}

	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat dir failed: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("expected dir mode 0700, got %o", perm)
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"scurt", 10, "scurt"},
		{"Facerea lumii descrisă", 10, "Facerea..."},
		{"abc", 2, "ab"},
		{"", 5, ""},
		{"țărână", 4, "ț..."},
	}
	for _, c := range cases {
		if got := TruncateRunes(c.in, c.max); got != c.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestPrefixRunes(t *testing.T) {
	if got := PrefixRunes("înțelepciune", 3); got != "înț" {
		t.Errorf("expected %q, got %q", "înț", got)
	}
	if got := PrefixRunes("dar", 300); got != "dar" {
		t.Errorf("expected unchanged string, got %q", got)
	}
}
