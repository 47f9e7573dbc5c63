package encryption

import (
	"strings"
	"testing"

	"courier-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc, err := NewService("global-secret")
	require.NoError(t, err)

	for _, plain := range []string{"shpat_abc123", "", "unicode ✓ token"} {
		enc, err := svc.Encrypt(plain)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(enc, ":"))

		got, err := svc.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestService_FreshNonce(t *testing.T) {
	svc, err := NewService("global-secret")
	require.NoError(t, err)

	a, err := svc.Encrypt("same")
	require.NoError(t, err)
	b, err := svc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestService_MalformedCiphertext(t *testing.T) {
	svc, err := NewService("global-secret")
	require.NoError(t, err)

	cases := []string{
		"",
		"no-separator",
		"a:b:c",
		"zz:00",
		"00112233:00",
		"000000000000000000000000:zz",
		"000000000000000000000000:00",
	}
	for _, c := range cases {
		_, err := svc.Decrypt(c)
		assert.ErrorIs(t, err, domain.ErrMalformedCiphertext, c)
	}
}

func TestService_WrongKey(t *testing.T) {
	a, err := NewService("key-a")
	require.NoError(t, err)
	b, err := NewService("key-b")
	require.NoError(t, err)

	enc, err := a.Encrypt("shpat_secret")
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestService_Tampered(t *testing.T) {
	svc, err := NewService("global-secret")
	require.NoError(t, err)

	enc, err := svc.Encrypt("shpat_secret")
	require.NoError(t, err)

	last := enc[len(enc)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	_, err = svc.Decrypt(enc[:len(enc)-1] + string(flipped))
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestNewService_EmptySecret(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)
}
