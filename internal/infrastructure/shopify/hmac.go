package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/url"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

var errInvalidSignature = errors.New("invalid webhook signature")

// WebhookVerifier checks the X-Shopify-Hmac-Sha256 header of webhook deliveries.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for an app's client secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify compares the base64 HMAC-SHA256 of the raw body against header in constant time.
func (v *WebhookVerifier) Verify(payload []byte, header string) error {
	if len(v.secret) == 0 || header == "" {
		return errInvalidSignature
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(header)) {
		return errInvalidSignature
	}
	return nil
}

// VerifyQueryHMAC validates the hmac parameter of an OAuth callback query. The message is
// every other parameter except signature, sorted by key and joined as k=v&k=v.
func VerifyQueryHMAC(query url.Values, secret string) bool {
	if secret == "" || query.Get("hmac") == "" {
		return false
	}
	app := goshopify.App{ApiSecret: secret}
	ok, err := app.VerifyAuthorizationURL(&url.URL{RawQuery: query.Encode()})
	return err == nil && ok
}
