// Package token issues the short-lived capability tokens handed out on a
// successful identity resolution. Downstream services verify the signature
// and reject tokens whose issued-at is older than their staleness window, so
// iat must be wall-clock-accurate and never repeat or go backwards.
package token

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "facesign/pkg/domain-errors"
)

// Claims carries the resolved identifier as the token subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs ES512 capability tokens.
type Issuer struct {
	privateKey *ecdsa.PrivateKey
	issuer     string
	clock      func() time.Time

	mu      sync.Mutex
	lastIAT time.Time
}

// IssuerOption configures an Issuer instance.
type IssuerOption func(*Issuer)

// WithIssuerClock sets the clock function for testability.
func WithIssuerClock(clock func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// WithIssuerName sets the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = name
	}
}

// NewIssuer constructs an issuer from a PEM-encoded EC private key.
func NewIssuer(privateKeyPEM []byte, opts ...IssuerOption) (*Issuer, error) {
	privateKey, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse EC private key: %w", err)
	}
	issuer := &Issuer{
		privateKey: privateKey,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(issuer)
		}
	}
	return issuer, nil
}

// NewIssuerFromFile constructs an issuer from a PEM key file on disk.
func NewIssuerFromFile(path string, opts ...IssuerOption) (*Issuer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}
	return NewIssuer(pem, opts...)
}

// Issue signs a token with subject = identifier. The issued-at claim never
// goes backwards even if the wall clock steps back between issuances.
func (i *Issuer) Issue(identifier string) (string, error) {
	if identifier == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}

	issuedAt := i.nextIssuedAt()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identifier,
			IssuedAt: jwt.NewNumericDate(issuedAt),
			Issuer:   i.issuer,
			ID:       uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES512, claims).SignedString(i.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign capability token: %w", err)
	}
	return signed, nil
}

// nextIssuedAt returns the current wall-clock time, pinned to the previous
// iat if the clock has stepped backwards.
func (i *Issuer) nextIssuedAt() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.clock()
	if now.Before(i.lastIAT) {
		now = i.lastIAT
	}
	i.lastIAT = now
	return now
}

// Verify parses and validates a token, returning its claims. Used by tests
// and by operators inspecting issued tokens; downstream services hold only
// the public key.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return &i.privateKey.PublicKey, nil
	})
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
