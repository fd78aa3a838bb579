package ir

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIdentity derives a real ed25519 public key from a name.
func testIdentity(t *testing.T, name string) Identity {
	t.Helper()
	seed := sha256.Sum256([]byte(name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	id, err := IdentityFromPublicKey(priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return id
}

func TestDeriveDeterminism(t *testing.T) {
	owner := testIdentity(t, "alice")

	a1, n1, err := Derive(TagUserRecord, &owner)
	require.NoError(t, err)
	a2, n2, err := Derive(TagUserRecord, &owner)
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "Derive must be deterministic")
	assert.Equal(t, n1, n2)
}

func TestDeriveDistinctOwners(t *testing.T) {
	seen := make(map[Address]string)
	for i := 0; i < 256; i++ {
		name := fmt.Sprintf("owner-%d", i)
		owner := testIdentity(t, name)

		addr, _, err := UserRecordAddress(owner)
		require.NoError(t, err)

		if prev, ok := seen[addr]; ok {
			t.Fatalf("address collision between %s and %s", prev, name)
		}
		seen[addr] = name
	}
}

func TestDeriveConfigDiffersFromUserRecords(t *testing.T) {
	cfg, _, err := ConfigAddress()
	require.NoError(t, err)

	owner := testIdentity(t, "alice")
	rec, _, err := UserRecordAddress(owner)
	require.NoError(t, err)

	assert.NotEqual(t, cfg, rec)
}

func TestDeriveTagSeparation(t *testing.T) {
	owner := testIdentity(t, "alice")

	a1, _, err := Derive(TagUserRecord, &owner)
	require.NoError(t, err)
	a2, _, err := Derive("other-record", &owner)
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2, "different tags must produce different addresses")
}

func TestDeriveIsOffCurve(t *testing.T) {
	for i := 0; i < 64; i++ {
		owner := testIdentity(t, fmt.Sprintf("owner-%d", i))
		addr, nonce, err := UserRecordAddress(owner)
		require.NoError(t, err)

		assert.False(t, onCurve(addr), "derived address must not be a curve point")

		again, err := AddressFor(TagUserRecord, &owner, nonce)
		require.NoError(t, err)
		assert.Equal(t, addr, again, "AddressFor must reproduce Derive with the same nonce")
	}
}

func TestIdentitiesAreOnCurve(t *testing.T) {
	// Public keys are valid points, so they can never equal a derived address.
	owner := testIdentity(t, "alice")
	assert.True(t, onCurve(Address(owner)))
}

func TestAddressForRejectsHigherOnCurveNonces(t *testing.T) {
	owner := testIdentity(t, "bob")
	_, nonce, err := UserRecordAddress(owner)
	require.NoError(t, err)

	// Every nonce above the chosen one was rejected for being on-curve.
	for n := 255; n > int(nonce); n-- {
		_, err := AddressFor(TagUserRecord, &owner, Nonce(n))
		assert.ErrorIs(t, err, ErrOnCurve)
	}
}

func TestDeriveRejectsBadTag(t *testing.T) {
	_, _, err := Derive("", nil)
	assert.ErrorIs(t, err, ErrSeedTooLong)

	_, _, err = Derive("this-tag-is-definitely-longer-than-32-bytes", nil)
	assert.ErrorIs(t, err, ErrSeedTooLong)
}

func TestAddressTextRoundTrip(t *testing.T) {
	addr, _, err := ConfigAddress()
	require.NoError(t, err)

	text, err := addr.MarshalText()
	require.NoError(t, err)
	assert.Len(t, text, 64)

	var back Address
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, addr, back)
}

func TestParseAddressErrors(t *testing.T) {
	_, err := ParseAddress("zz")
	assert.Error(t, err)

	_, err = ParseAddress("abcd")
	assert.Error(t, err)
}
