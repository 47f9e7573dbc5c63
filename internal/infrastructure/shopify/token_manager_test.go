package shopify

import (
	"errors"
	"testing"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/infrastructure/cache"
	"courier-shopify-layer/internal/infrastructure/encryption"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCipher struct {
	ports.EncryptionService
	decrypts int
}

func (c *countingCipher) Decrypt(ciphertext string) (string, error) {
	c.decrypts++
	return c.EncryptionService.Decrypt(ciphertext)
}

func newTestTokenManager(t *testing.T) (*TokenManager, *countingCipher) {
	t.Helper()
	global, err := encryption.NewService("global-key")
	require.NoError(t, err)
	perApp, err := encryption.NewService("app-client-secret")
	require.NoError(t, err)
	counting := &countingCipher{EncryptionService: perApp}

	tm := NewTokenManager(global, map[string]ports.EncryptionService{"b2b": counting}, cache.NewMemoryTokenCache(), zerolog.Nop())
	return tm, counting
}

func TestTokenManager_SelectsCipherByApp(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	legacy, err := tm.EncryptToken("", "shpat_legacy")
	require.NoError(t, err)
	perApp, err := tm.EncryptToken("b2b", "shpat_b2b")
	require.NoError(t, err)

	plain, err := tm.DecryptToken("", legacy)
	require.NoError(t, err)
	assert.Equal(t, "shpat_legacy", plain)

	plain, err = tm.DecryptToken("b2b", perApp)
	require.NoError(t, err)
	assert.Equal(t, "shpat_b2b", plain)

	_, err = tm.DecryptToken("", perApp)
	assert.True(t, errors.Is(err, domain.ErrDecryptionFailed))
}

func TestTokenManager_UnknownApp(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	_, err := tm.EncryptToken("retail", "shpat")
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestTokenManager_TenantTokenCached(t *testing.T) {
	tm, counting := newTestTokenManager(t)

	enc, err := tm.EncryptToken("b2b", "shpat_b2b")
	require.NoError(t, err)
	conn := &domain.Connection{AppID: "b2b", AccessToken: enc, ConnectedAt: time.Now()}

	for i := 0; i < 3; i++ {
		token, err := tm.TenantToken("tenant-1", conn)
		require.NoError(t, err)
		assert.Equal(t, "shpat_b2b", token)
	}
	assert.Equal(t, 1, counting.decrypts)

	tm.Invalidate("tenant-1")
	_, err = tm.TenantToken("tenant-1", conn)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.decrypts)
}
