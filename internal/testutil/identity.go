// Package testutil provides deterministic fixtures for tests and scenarios.
package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/roach88/favnum/internal/ir"
)

// identityDomain separates fixture seeds from any other use of SHA-256.
const identityDomain = "favnum/test-identity/v1"

// Keypair returns the ed25519 private key for a named fixture identity.
//
// The same name always yields the same key, so scenarios and golden traces
// that refer to identities by name are reproducible across runs.
func Keypair(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte(identityDomain + "\x00" + name))
	return ed25519.NewKeyFromSeed(seed[:])
}

// Identity returns the public identity for a named fixture.
func Identity(name string) ir.Identity {
	pub := Keypair(name).Public().(ed25519.PublicKey)
	id, err := ir.IdentityFromPublicKey(pub)
	if err != nil {
		panic(err)
	}
	return id
}

// Names maps fixture names to identities and back.
//
// Thread-safety: Names is not safe for concurrent mutation.
type Names struct {
	byName     map[string]ir.Identity
	byIdentity map[ir.Identity]string
}

// NewNames registers the given fixture names.
func NewNames(names ...string) *Names {
	n := &Names{
		byName:     make(map[string]ir.Identity),
		byIdentity: make(map[ir.Identity]string),
	}
	for _, name := range names {
		n.Identity(name)
	}
	return n
}

// Identity returns the identity for name, registering it on first use.
func (n *Names) Identity(name string) ir.Identity {
	if id, ok := n.byName[name]; ok {
		return id
	}
	id := Identity(name)
	n.byName[name] = id
	n.byIdentity[id] = name
	return id
}

// Name returns the fixture name for id, or its hex form if unregistered.
func (n *Names) Name(id ir.Identity) string {
	if name, ok := n.byIdentity[id]; ok {
		return name
	}
	return id.String()
}
