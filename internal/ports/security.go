package ports

import (
	"context"
	"net/url"
	"time"

	"courier-shopify-layer/internal/domain"
)

// EncryptionService encrypts vendor access tokens at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// IdentityVerifier validates a bearer id token and returns the user id it names.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

// TokenCache holds short-lived secrets keyed by tenant and app.
type TokenCache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Delete(key string)
}

// WebhookGuard de-duplicates webhook deliveries by their delivery id.
type WebhookGuard interface {
	// CheckAndMark returns true when the id was already seen.
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Release(ctx context.Context, deliveryID string) error
}

// TokenVault encrypts tokens under the cipher of their app and serves decrypted tenant tokens.
type TokenVault interface {
	EncryptToken(appID string, token string) (string, error)
	DecryptToken(appID string, encryptedToken string) (string, error)
	TenantToken(tenantID string, conn *domain.Connection) (string, error)
	// Invalidate drops every cached token of the tenant.
	Invalidate(tenantID string)
}

// StateCodec signs and opens OAuth state values with an app's client secret.
type StateCodec interface {
	Encode(secret string, userID string) (string, error)
	// Decode returns ok=false for any value not produced by Encode under secret.
	Decode(secret string, state string) (string, bool)
}

// SignatureVerifier authenticates Shopify-signed requests in constant time.
type SignatureVerifier interface {
	VerifyQuery(query url.Values, secret string) bool
	VerifyWebhook(body []byte, header string, secret string) bool
}
