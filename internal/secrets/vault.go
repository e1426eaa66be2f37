// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secrets stores the single AI API credential apart from general
// persistence.
//
// The credential never enters the settings blob or the kv database. It is
// kept in an encrypted file vault: AES-256-GCM, key derived with
// PBKDF2-SHA-256 from a per-machine key file. Directory 0700, files 0600.
//
// Load failures are deliberately silent — a missing or unreadable
// credential means "not configured", and callers fall back to the
// unconfigured state. There is no embedded fallback key.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nexubible/bibliacore/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// keySize is the AES-256 key length.
	keySize = 32
	// saltSize is the PBKDF2 salt length.
	saltSize = 32
	// nonceSize is the AES-GCM nonce length.
	nonceSize = 12
	// pbkdf2Iterations follows current OWASP guidance for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000

	credentialFile = "credential.enc"
	machineKeyFile = "vault.key"
)

// ErrVaultWrite indicates the credential could not be persisted.
var ErrVaultWrite = errors.New("secrets: failed to write credential")

// =============================================================================
// VAULT INTERFACE
// =============================================================================

// Vault stores exactly one secret: the Gemini API key.
type Vault interface {
	// Save stores the secret, replacing any previous value.
	// Defined as delete-then-insert so repeated saves never stack entries.
	Save(secret string) error
	// Load returns the secret. The bool is false when no usable secret is
	// stored; corruption and I/O failures also read as absence.
	Load() (string, bool)
	// Delete removes the secret. Deleting an absent secret is a no-op.
	Delete() error
}

// =============================================================================
// FILE VAULT
// =============================================================================

// FileVault is the portable encrypted-file implementation of Vault.
type FileVault struct {
	dir string
}

// NewFileVault returns a vault rooted at <dataDir>/vault.
func NewFileVault(dataDir string) *FileVault {
	return &FileVault{dir: filepath.Join(dataDir, "vault")}
}

// Save encrypts and stores the secret. An empty secret is equivalent to
// Delete.
func (v *FileVault) Save(secret string) error {
	if secret == "" {
		return v.Delete()
	}

	// Delete-then-insert keeps Save idempotent.
	if err := v.Delete(); err != nil {
		return err
	}

	key, salt, err := v.deriveKey(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVaultWrite, err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVaultWrite, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVaultWrite, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("%w: %v", ErrVaultWrite, err)
	}

	sealed := aead.Seal(nil, nonce, []byte(secret), nil)

	// File layout: salt | nonce | ciphertext+tag.
	payload := make([]byte, 0, saltSize+nonceSize+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	if err := util.AtomicWriteFileWithDir(v.credentialPath(), payload, 0600, 0700); err != nil {
		return fmt.Errorf("%w: %v", ErrVaultWrite, err)
	}
	return nil
}

// Load decrypts and returns the stored secret. Every failure mode — missing
// file, truncated payload, tampered ciphertext, unreadable machine key —
// reads as absence: the credential is a convenience, not integrity-critical
// data.
func (v *FileVault) Load() (string, bool) {
	payload, err := os.ReadFile(v.credentialPath())
	if err != nil {
		return "", false
	}
	if len(payload) < saltSize+nonceSize+1 {
		return "", false
	}

	salt := payload[:saltSize]
	nonce := payload[saltSize : saltSize+nonceSize]
	sealed := payload[saltSize+nonceSize:]

	key, _, err := v.deriveKey(salt)
	if err != nil {
		return "", false
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", false
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", false
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", false
	}
	if len(plain) == 0 {
		return "", false
	}
	return string(plain), true
}

// Delete removes the credential file, overwriting it first.
func (v *FileVault) Delete() error {
	path := v.credentialPath()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat credential file: %w", err)
	}

	// Best-effort overwrite before unlink.
	if size := info.Size(); size > 0 {
		if f, err := os.OpenFile(path, os.O_WRONLY, 0600); err == nil {
			_, _ = f.Write(make([]byte, size))
			_ = f.Sync()
			_ = f.Close()
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential file: %w", err)
	}
	return nil
}

// =============================================================================
// KEY DERIVATION
// =============================================================================

// deriveKey derives the AES key from the machine key file. When salt is nil
// a fresh salt is generated; the machine key file itself is created on first
// use with restricted permissions.
func (v *FileVault) deriveKey(salt []byte) (key, usedSalt []byte, err error) {
	machineKey, err := v.loadOrCreateMachineKey()
	if err != nil {
		return nil, nil, err
	}
	defer zero(machineKey)

	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	key = pbkdf2.Key(machineKey, salt, pbkdf2Iterations, keySize, sha256.New)
	return key, salt, nil
}

// loadOrCreateMachineKey reads the random per-machine key, generating it on
// first use.
func (v *FileVault) loadOrCreateMachineKey() ([]byte, error) {
	path := filepath.Join(v.dir, machineKeyFile)

	if data, err := os.ReadFile(path); err == nil && len(data) == keySize {
		return data, nil
	}

	fresh := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, fresh); err != nil {
		return nil, fmt.Errorf("failed to generate machine key: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, fresh, 0600, 0700); err != nil {
		return nil, fmt.Errorf("failed to write machine key: %w", err)
	}
	return fresh, nil
}

func (v *FileVault) credentialPath() string {
	return filepath.Join(v.dir, credentialFile)
}

// zero wipes key material before it is garbage collected.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
