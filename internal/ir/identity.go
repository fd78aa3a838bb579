package ir

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// IdentitySize is the width of an identity in bytes (an ed25519 public key).
const IdentitySize = ed25519.PublicKeySize

// Identity is an opaque principal: the public half of an ed25519 keypair.
// Callers arrive already verified; the core only compares identities.
type Identity [IdentitySize]byte

// ParseIdentity decodes a 64-character hex identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return id, fmt.Errorf("parse identity: %w", err)
	}
	if len(raw) != IdentitySize {
		return id, fmt.Errorf("parse identity: got %d bytes, want %d", len(raw), IdentitySize)
	}
	copy(id[:], raw)
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error.
// Use only in tests or with constant inputs.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentityFromPublicKey converts an ed25519 public key.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	var id Identity
	if len(pub) != IdentitySize {
		return id, fmt.Errorf("public key: got %d bytes, want %d", len(pub), IdentitySize)
	}
	copy(id[:], pub)
	return id, nil
}

// PublicKey returns the identity as an ed25519 public key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

// String returns the lowercase hex form.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
