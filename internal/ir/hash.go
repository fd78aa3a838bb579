package ir

import (
	"crypto/sha256"
)

// Domain prefixes for hashed identity.
// Version suffix enables future algorithm migration.
const (
	DomainAddress  = "favnum/address/v1"
	DomainRecord   = "favnum/record/v" + LayoutVersion
	DomainRegistry = "favnum/registry/v1"
)

// hashWithDomain computes SHA-256 over parts with domain separation.
// Format: SHA256(domain + 0x00 + parts...)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, parts ...[]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	for _, p := range parts {
		h.Write(p)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// RegistryID scopes every derived address to this registry. Two registries
// built with different IDs never share an address space.
var RegistryID = Identity(hashWithDomain(DomainRegistry, []byte("favnum")))
