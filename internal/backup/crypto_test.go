package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt), saltSize)
	}

	salt2, _ := GenerateSalt()
	if bytes.Equal(salt, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	k1 := DeriveKey("passphrase", salt)
	k2 := DeriveKey("passphrase", salt)
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}
	if len(k1) != keySize {
		t.Errorf("key length = %d, want %d", len(k1), keySize)
	}

	k3 := DeriveKey("different", salt)
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should derive different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	dec := filepath.Join(dir, "restored.db")

	content := []byte("not really a database, but good enough to encrypt")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "hunter2", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encData, _ := os.ReadFile(enc)
	if bytes.Contains(encData, content) {
		t.Error("ciphertext contains plaintext")
	}
	if !bytes.Equal(encData[:saltSize], salt) {
		t.Error("encrypted file should start with the salt")
	}

	if err := DecryptFile(enc, dec, "hunter2"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	restored, _ := os.ReadFile(dec)
	if !bytes.Equal(restored, content) {
		t.Error("round trip did not restore original content")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	dec := filepath.Join(dir, "restored.db")

	os.WriteFile(src, []byte("secret"), 0600)

	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "correct", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(enc, dec, "wrong"); err == nil {
		t.Error("expected decryption failure with wrong passphrase")
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "short.enc")
	os.WriteFile(enc, []byte("tooshort"), 0600)

	if err := DecryptFile(enc, filepath.Join(dir, "out"), "pass"); err == nil {
		t.Error("expected error for truncated file")
	}
}
