package auth

import (
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/favnum/internal/testutil"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := TokenOptions{Now: fixedClock(now)}

	token, err := IssueToken(testutil.Keypair("B"), opts)
	require.NoError(t, err)

	id, err := VerifyToken(token, opts)
	require.NoError(t, err)
	assert.Equal(t, testutil.Identity("B"), id)
}

func TestAuthenticate(t *testing.T) {
	id, err := Authenticate(testutil.Keypair("A"), TokenOptions{})
	require.NoError(t, err)
	assert.Equal(t, testutil.Identity("A"), id)
}

func TestVerifyTokenExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := IssueToken(testutil.Keypair("B"), TokenOptions{Now: fixedClock(issued), TTL: time.Minute})
	require.NoError(t, err)

	_, err = VerifyToken(token, TokenOptions{Now: fixedClock(issued.Add(2 * time.Minute))})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorContains(t, err, "expired")
}

func TestVerifyTokenForgedSubject(t *testing.T) {
	// Signed by C but claiming to be B.
	claims := jwt.RegisteredClaims{
		Subject:   testutil.Identity("B").String(),
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(testutil.Keypair("C"))
	require.NoError(t, err)

	_, err = VerifyToken(token, TokenOptions{})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorContains(t, err, "bad signature")
}

func TestVerifyTokenWrongAudience(t *testing.T) {
	priv := testutil.Keypair("B")
	claims := jwt.RegisteredClaims{
		Subject:   testutil.Identity("B").String(),
		Audience:  jwt.ClaimStrings{"elsewhere"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	require.NoError(t, err)

	_, err = VerifyToken(token, TokenOptions{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   testutil.Identity("B").String(),
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = VerifyToken(token, TokenOptions{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "   ", "not.a.token", strings.Repeat("a", 40)} {
		_, err := VerifyToken(token, TokenOptions{})
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestIssueTokenBadKey(t *testing.T) {
	_, err := IssueToken(ed25519.PrivateKey{1, 2, 3}, TokenOptions{})
	assert.Error(t, err)
}
