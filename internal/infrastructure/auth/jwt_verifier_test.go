package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v, err := NewJWTVerifier("s3cret", "courier-dashboard", "courier-api")
	require.NoError(t, err)

	token, err := v.Mint("user-42", time.Now(), time.Hour)
	require.NoError(t, err)

	sub, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, err := NewJWTVerifier("s3cret", "courier-dashboard", "courier-api")
	require.NoError(t, err)
	other, err := NewJWTVerifier("other", "courier-dashboard", "courier-api")
	require.NoError(t, err)
	wrongIssuer, err := NewJWTVerifier("s3cret", "someone-else", "courier-api")
	require.NoError(t, err)

	expired, err := v.Mint("user-42", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Mint("user-42", time.Now(), time.Hour)
	require.NoError(t, err)
	misissued, err := wrongIssuer.Mint("user-42", time.Now(), time.Hour)
	require.NoError(t, err)
	noSubject, err := v.Mint("", time.Now(), time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.jwt",
		"expired":    expired,
		"foreign":    foreign,
		"issuer":     misissued,
		"no subject": noSubject,
		"alg none":   none,
	} {
		_, err := v.Verify(context.Background(), token)
		assert.Error(t, err, name)
	}
}
