package ir

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
)

// Namespace tags for the two record kinds.
const (
	TagConfig     = "state"
	TagUserRecord = "user-record"
)

// MaxSeedLen bounds each derivation seed.
const MaxSeedLen = 32

// AddressSize is the width of a derived address in bytes.
const AddressSize = 32

var (
	// ErrNoValidNonce is returned when every nonce yields an on-curve
	// candidate. With 256 candidates this does not happen in practice.
	ErrNoValidNonce = errors.New("no valid nonce for derived address")

	// ErrOnCurve is returned by AddressFor when the given nonce produces a
	// candidate that is a valid ed25519 point.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")

	// ErrSeedTooLong is returned for seeds longer than MaxSeedLen.
	ErrSeedTooLong = errors.New("derivation seed too long")
)

// Address is a storage location derived from a namespace tag and an
// optional owner identity.
type Address [AddressSize]byte

// Nonce disambiguates a derivation so the resulting address is off-curve.
type Nonce uint8

// ParseAddress decodes a 64-character hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return a, fmt.Errorf("parse address: %w", err)
	}
	if len(raw) != AddressSize {
		return a, fmt.Errorf("parse address: got %d bytes, want %d", len(raw), AddressSize)
	}
	copy(a[:], raw)
	return a, nil
}

// String returns the lowercase hex form.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Derive maps (tag, owner) to an address and the nonce that produced it.
// owner is nil for singleton records.
//
// Nonces are tried from 255 downward; the first candidate that is not a
// valid ed25519 point wins. An off-curve address has no private key, so no
// identity can ever sign for it.
func Derive(tag string, owner *Identity) (Address, Nonce, error) {
	seeds, err := seedsFor(tag, owner)
	if err != nil {
		return Address{}, 0, err
	}
	for n := 255; n >= 0; n-- {
		candidate := candidateAddress(seeds, Nonce(n))
		if !onCurve(candidate) {
			return candidate, Nonce(n), nil
		}
	}
	return Address{}, 0, ErrNoValidNonce
}

// AddressFor recomputes the address for a known nonce. It fails with
// ErrOnCurve if that nonce does not yield a valid derived address.
func AddressFor(tag string, owner *Identity, nonce Nonce) (Address, error) {
	seeds, err := seedsFor(tag, owner)
	if err != nil {
		return Address{}, err
	}
	candidate := candidateAddress(seeds, nonce)
	if onCurve(candidate) {
		return Address{}, ErrOnCurve
	}
	return candidate, nil
}

// ConfigAddress returns the fixed address of the GlobalConfig singleton.
func ConfigAddress() (Address, Nonce, error) {
	return Derive(TagConfig, nil)
}

// UserRecordAddress returns the address of owner's UserRecord.
func UserRecordAddress(owner Identity) (Address, Nonce, error) {
	return Derive(TagUserRecord, &owner)
}

func seedsFor(tag string, owner *Identity) ([][]byte, error) {
	if len(tag) == 0 || len(tag) > MaxSeedLen {
		return nil, fmt.Errorf("%w: tag %q", ErrSeedTooLong, tag)
	}
	seeds := [][]byte{[]byte(tag)}
	if owner != nil {
		seeds = append(seeds, owner[:])
	}
	return seeds, nil
}

// candidateAddress hashes the seeds length-prefixed so that ("ab", "c") and
// ("a", "bc") never produce the same input.
func candidateAddress(seeds [][]byte, nonce Nonce) Address {
	parts := make([][]byte, 0, 2*len(seeds)+2)
	parts = append(parts, RegistryID[:])
	for _, s := range seeds {
		parts = append(parts, []byte{byte(len(s))}, s)
	}
	parts = append(parts, []byte{byte(nonce)})
	return Address(hashWithDomain(DomainAddress, parts...))
}

func onCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
