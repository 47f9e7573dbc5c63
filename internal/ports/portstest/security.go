package portstest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"courier-shopify-layer/internal/domain"
)

// Vault is a reversible ports.TokenVault that tags ciphertext with the app id.
type Vault struct {
	mu          sync.Mutex
	Invalidated []string
}

func (v *Vault) EncryptToken(appID, token string) (string, error) {
	return "enc:" + appID + ":" + token, nil
}

func (v *Vault) DecryptToken(appID, encrypted string) (string, error) {
	prefix := "enc:" + appID + ":"
	if !strings.HasPrefix(encrypted, prefix) {
		return "", domain.ErrDecryptionFailed
	}
	return strings.TrimPrefix(encrypted, prefix), nil
}

func (v *Vault) TenantToken(_ string, conn *domain.Connection) (string, error) {
	return v.DecryptToken(conn.AppID, conn.AccessToken)
}

func (v *Vault) Invalidate(tenantID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Invalidated = append(v.Invalidated, tenantID)
}

// Verifier accepts query HMAC "valid" and webhook headers equal to Sign(secret).
type Verifier struct{}

// Sign returns the webhook header Verifier accepts for secret.
func Sign(secret string) string {
	return "sig:" + secret
}

func (Verifier) VerifyQuery(query url.Values, _ string) bool {
	return query.Get("hmac") == "valid"
}

func (Verifier) VerifyWebhook(_ []byte, header, secret string) bool {
	return header == Sign(secret)
}

// Guard is an in-memory ports.WebhookGuard.
type Guard struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

func (g *Guard) CheckAndMark(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return false, g.Err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[id] {
		return true, nil
	}
	g.seen[id] = true
	return false, nil
}

func (g *Guard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	return nil
}

// Identity is a ports.IdentityVerifier accepting "token-<user>".
type Identity struct{}

func (Identity) Verify(_ context.Context, raw string) (string, error) {
	user, ok := strings.CutPrefix(raw, "token-")
	if !ok || user == "" {
		return "", fmt.Errorf("invalid token")
	}
	return user, nil
}
