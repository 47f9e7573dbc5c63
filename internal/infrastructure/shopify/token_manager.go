package shopify

import (
	"fmt"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

const defaultTokenCacheTTL = 5 * time.Minute

// TokenManager selects the cipher matching a connection's app and caches decrypted tokens.
// Connections without an app id predate per-app keys and use the global cipher.
type TokenManager struct {
	global     ports.EncryptionService
	appCiphers map[string]ports.EncryptionService
	cache      ports.TokenCache
	ttl        time.Duration
	logger     zerolog.Logger
}

// NewTokenManager creates a new token manager. cache may be nil.
func NewTokenManager(
	global ports.EncryptionService,
	appCiphers map[string]ports.EncryptionService,
	cache ports.TokenCache,
	logger zerolog.Logger,
) *TokenManager {
	return &TokenManager{
		global:     global,
		appCiphers: appCiphers,
		cache:      cache,
		ttl:        defaultTokenCacheTTL,
		logger:     logger,
	}
}

func (tm *TokenManager) cipherFor(appID string) (ports.EncryptionService, error) {
	if appID == "" {
		return tm.global, nil
	}
	c, ok := tm.appCiphers[appID]
	if !ok {
		return nil, domain.NewError(domain.KindConfiguration, fmt.Sprintf("no cipher configured for app %q", appID))
	}
	return c, nil
}

// EncryptToken encrypts an access token before storage
func (tm *TokenManager) EncryptToken(appID, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	c, err := tm.cipherFor(appID)
	if err != nil {
		return "", err
	}
	return c.Encrypt(token)
}

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(appID, encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", fmt.Errorf("encrypted token cannot be empty")
	}
	c, err := tm.cipherFor(appID)
	if err != nil {
		return "", err
	}
	return c.Decrypt(encryptedToken)
}

// TenantToken returns the plaintext token of a tenant's connection, served from cache when fresh.
func (tm *TokenManager) TenantToken(tenantID string, conn *domain.Connection) (string, error) {
	key := cacheKey(tenantID, conn.AppID)
	if tm.cache != nil {
		if token, ok := tm.cache.Get(key); ok {
			return token, nil
		}
	}

	token, err := tm.DecryptToken(conn.AppID, conn.AccessToken)
	if err != nil {
		tm.logger.Warn().Err(err).Str("tenantId", tenantID).Str("appId", conn.AppID).Msg("Failed to decrypt shop access token")
		return "", err
	}
	if tm.cache != nil {
		tm.cache.Set(key, token, tm.ttl)
	}
	return token, nil
}

// Invalidate drops every cached token of a tenant, whichever app it was issued under.
func (tm *TokenManager) Invalidate(tenantID string) {
	if tm.cache == nil {
		return
	}
	tm.cache.Delete(cacheKey(tenantID, ""))
	for appID := range tm.appCiphers {
		tm.cache.Delete(cacheKey(tenantID, appID))
	}
}

func cacheKey(tenantID, appID string) string {
	return tenantID + ":" + appID
}
