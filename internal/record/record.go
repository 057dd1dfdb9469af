// Package record implements the signed, checksummed record envelope that
// wraps every governance payload. Integrity is verified here, before a
// record reaches the workflow engine; the engine trusts what it receives.
package record

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"govline/internal/domain"
)

const Version = "1.0"

// Envelope wraps a record payload with its checksum and signatures.
type Envelope struct {
	Version    string             `json:"version"`
	Type       string             `json:"type" enum:"task,actor,cycle,feedback,execution"`
	Checksum   string             `json:"payload_checksum"`
	Signatures []domain.Signature `json:"signatures"`
	Payload    json.RawMessage    `json:"payload"`
}

var (
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
	ErrBadSignature     = errors.New("signature verification failed")
)

// Checksum returns the SHA-256 hex digest of the canonical JSON form of the
// payload. Canonical form is the payload re-marshaled through a generic
// value so that object keys are sorted.
func Checksum(payload any) (string, error) {
	canon, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalJSON(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// signingInput is what a key actually signs: the payload digest bound to the
// declared role and timestamp, so a signature cannot be replayed under a
// different role.
func signingInput(checksum, role, signedAt string) []byte {
	return []byte(checksum + "|" + role + "|" + signedAt)
}

// Sign produces a signature over the checksum for the given role.
func Sign(priv ed25519.PrivateKey, keyID, role, checksum string, now time.Time) domain.Signature {
	signedAt := now.UTC().Format(time.RFC3339)
	sig := ed25519.Sign(priv, signingInput(checksum, role, signedAt))
	return domain.Signature{
		KeyID:     keyID,
		Role:      role,
		Digest:    checksum,
		Signature: base64.StdEncoding.EncodeToString(sig),
		SignedAt:  signedAt,
	}
}

// Verify checks one signature against the public key and the envelope
// checksum.
func Verify(pub ed25519.PublicKey, sig domain.Signature, checksum string) error {
	if sig.Digest != checksum {
		return ErrChecksumMismatch
	}
	raw, err := base64.StdEncoding.DecodeString(sig.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if !ed25519.Verify(pub, signingInput(sig.Digest, sig.Role, sig.SignedAt), raw) {
		return ErrBadSignature
	}
	return nil
}

// New builds an envelope around a payload, computing its checksum.
func New(recordType string, payload any) (Envelope, error) {
	checksum, err := Checksum(payload)
	if err != nil {
		return Envelope{}, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:  Version,
		Type:     recordType,
		Checksum: checksum,
		Payload:  raw,
	}, nil
}

// Append signs the envelope payload and appends the signature.
func (e *Envelope) Append(priv ed25519.PrivateKey, keyID, role string, now time.Time) {
	e.Signatures = append(e.Signatures, Sign(priv, keyID, role, e.Checksum, now))
}

// VerifyAll recomputes the payload checksum and verifies every signature
// against the lookup of public keys by key id.
func (e Envelope) VerifyAll(pubKeys func(keyID string) (ed25519.PublicKey, bool)) error {
	var v any
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return err
	}
	checksum, err := Checksum(v)
	if err != nil {
		return err
	}
	if checksum != e.Checksum {
		return ErrChecksumMismatch
	}
	for _, sig := range e.Signatures {
		pub, ok := pubKeys(sig.KeyID)
		if !ok {
			return fmt.Errorf("unknown signing key %s", sig.KeyID)
		}
		if err := Verify(pub, sig, e.Checksum); err != nil {
			return fmt.Errorf("signature by %s: %w", sig.KeyID, err)
		}
	}
	return nil
}
