package record

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"govline/internal/domain"
)

// Signer produces signatures bound to one key identity.
type Signer interface {
	KeyID() string
	Sign(role, checksum string, now time.Time) domain.Signature
}

// KeySigner signs with an in-memory ed25519 private key.
type KeySigner struct {
	ID   string
	Priv ed25519.PrivateKey
}

func (s KeySigner) KeyID() string { return s.ID }

func (s KeySigner) Sign(role, checksum string, now time.Time) domain.Signature {
	return Sign(s.Priv, s.ID, role, checksum, now)
}

// GenerateKey creates a new signing key pair.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(nil)
}

// EncodePublicKey renders a public key for storage on an actor record.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// keyPath stores one private key per actor under the workspace. The actor id
// contains a colon (e.g. human:alice) which is unfriendly to filesystems.
func keyPath(workspaceDir, actorID string) string {
	name := strings.ReplaceAll(actorID, ":", "_") + ".key"
	return filepath.Join(workspaceDir, "keys", name)
}

// SaveKey writes a private key for an actor with owner-only permissions.
func SaveKey(workspaceDir, actorID string, priv ed25519.PrivateKey) error {
	path := keyPath(workspaceDir, actorID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data := base64.StdEncoding.EncodeToString(priv)
	return os.WriteFile(path, []byte(data+"\n"), 0o600)
}

// LoadKey reads an actor's private key from the workspace.
func LoadKey(workspaceDir, actorID string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(keyPath(workspaceDir, actorID))
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode key for %s: %w", actorID, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("key for %s has wrong size", actorID)
	}
	return ed25519.PrivateKey(raw), nil
}
