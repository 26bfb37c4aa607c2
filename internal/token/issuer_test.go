package token

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer(testKeyPEM(t), WithIssuerName("facesign"))
	require.NoError(t, err)

	signed, err := issuer.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "facesign", claims.Issuer)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueRejectsEmptyIdentifier(t *testing.T) {
	issuer, err := NewIssuer(testKeyPEM(t))
	require.NoError(t, err)

	_, err = issuer.Issue("")
	require.Error(t, err)
}

func TestIssuedAtNeverGoesBackwards(t *testing.T) {
	times := []time.Time{
		time.Unix(1000, 0),
		time.Unix(900, 0), // clock stepped back
		time.Unix(1100, 0),
	}
	idx := 0
	issuer, err := NewIssuer(testKeyPEM(t), WithIssuerClock(func() time.Time {
		now := times[idx]
		idx++
		return now
	}))
	require.NoError(t, err)

	var issued []time.Time
	for range times {
		signed, err := issuer.Issue("user-123")
		require.NoError(t, err)
		claims, err := issuer.Verify(signed)
		require.NoError(t, err)
		issued = append(issued, claims.IssuedAt.Time)
	}

	assert.Equal(t, int64(1000), issued[0].Unix())
	assert.Equal(t, int64(1000), issued[1].Unix(), "iat must not go backwards")
	assert.Equal(t, int64(1100), issued[2].Unix())
}

func TestNewIssuerRejectsGarbageKey(t *testing.T) {
	_, err := NewIssuer([]byte("not a pem key"))
	require.Error(t, err)
}

func TestTokensCarryDistinctIDs(t *testing.T) {
	issuer, err := NewIssuer(testKeyPEM(t))
	require.NoError(t, err)

	first, err := issuer.Issue("user-123")
	require.NoError(t, err)
	second, err := issuer.Issue("user-123")
	require.NoError(t, err)

	firstClaims, err := issuer.Verify(first)
	require.NoError(t, err)
	secondClaims, err := issuer.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
