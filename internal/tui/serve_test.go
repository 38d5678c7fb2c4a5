package tui

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	gossh "golang.org/x/crypto/ssh"
)

func generateTestKey(t *testing.T) gossh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return key
}

func TestLoadAuthorizedKeysEmptyPath(t *testing.T) {
	keys, err := loadAuthorizedKeys("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys != nil {
		t.Fatal("expected no keys for empty path")
	}
}

func TestLoadAuthorizedKeysMissingFile(t *testing.T) {
	keys, err := loadAuthorizedKeys(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys != nil {
		t.Fatal("expected no keys for a missing file")
	}
}

func TestLoadAuthorizedKeysParsesFile(t *testing.T) {
	a := generateTestKey(t)
	b := generateTestKey(t)

	path := filepath.Join(t.TempDir(), "authorized_keys")
	content := string(gossh.MarshalAuthorizedKey(a)) + string(gossh.MarshalAuthorizedKey(b))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	keys, err := loadAuthorizedKeys(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if !keysEqual(keys[0], a) {
		t.Fatal("expected first key to round-trip")
	}
	if keysEqual(keys[0], b) {
		t.Fatal("expected distinct keys to compare unequal")
	}
}
