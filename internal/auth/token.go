package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/roach88/favnum/internal/ir"
)

const (
	// Audience is the aud claim every registry token carries.
	Audience = "favnum"

	// DefaultTTL bounds how long an issued token is accepted.
	DefaultTTL = time.Minute
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenOptions tunes IssueToken and VerifyToken. The zero value uses
// DefaultTTL and time.Now.
type TokenOptions struct {
	TTL time.Duration
	Now func() time.Time
}

func (o TokenOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o TokenOptions) ttl() time.Duration {
	if o.TTL <= 0 {
		return DefaultTTL
	}
	return o.TTL
}

// IssueToken signs a token asserting that the holder of priv is the
// identity derived from its public key.
func IssueToken(priv ed25519.PrivateKey, opts TokenOptions) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("issue token: private key must be %d bytes", ed25519.PrivateKeySize)
	}
	now := opts.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   identityOf(priv).String(),
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(opts.ttl())),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and claims of token and returns the
// verified identity. The verification key is the subject itself, so a valid
// token proves possession of the subject's private key.
func VerifyToken(token string, opts TokenOptions) (ir.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ir.Identity{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims jwt.RegisteredClaims
	var subject ir.Identity
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		sub, err := t.Claims.GetSubject()
		if err != nil {
			return nil, err
		}
		id, err := ir.ParseIdentity(sub)
		if err != nil {
			return nil, err
		}
		subject = id
		return id.PublicKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(opts.now),
	)
	if err != nil {
		return ir.Identity{}, mapJWTError(err)
	}
	return subject, nil
}

// mapJWTError folds jwt library errors into ErrInvalidToken.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: expired", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrEd25519Verification):
		return fmt.Errorf("%w: bad signature", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: unverifiable", ErrInvalidToken)
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

// Authenticate issues and immediately verifies a token for priv. It is the
// single path by which the CLI turns a local key into an ir.Identity.
func Authenticate(priv ed25519.PrivateKey, opts TokenOptions) (ir.Identity, error) {
	token, err := IssueToken(priv, opts)
	if err != nil {
		return ir.Identity{}, err
	}
	return VerifyToken(token, opts)
}
