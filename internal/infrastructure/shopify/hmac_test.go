package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signQuery(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifier(t *testing.T) {
	body := []byte(`{"id":1001,"total_price":"499.00"}`)
	verifier := NewWebhookVerifier("app-secret")

	assert.NoError(t, verifier.Verify(body, signBody("app-secret", body)))
	assert.Error(t, verifier.Verify(body, signBody("other-secret", body)))
	assert.Error(t, verifier.Verify([]byte(`{"id":1002}`), signBody("app-secret", body)))
	assert.Error(t, verifier.Verify(body, ""))
	assert.Error(t, NewWebhookVerifier("").Verify(body, signBody("", body)))
}

func TestVerifyQueryHMAC(t *testing.T) {
	secret := "app-secret"
	message := "code=abc&shop=demo.myshopify.com&state=xyz&timestamp=1700000000"

	q := url.Values{}
	q.Set("timestamp", "1700000000")
	q.Set("state", "xyz")
	q.Set("shop", "demo.myshopify.com")
	q.Set("code", "abc")
	q.Set("hmac", signQuery(secret, message))

	assert.True(t, VerifyQueryHMAC(q, secret))

	t.Run("signature parameter is ignored", func(t *testing.T) {
		withSig := url.Values{}
		for k, v := range q {
			withSig[k] = v
		}
		withSig.Set("signature", "legacy")
		assert.True(t, VerifyQueryHMAC(withSig, secret))
	})

	t.Run("tampered parameter", func(t *testing.T) {
		tampered := url.Values{}
		for k, v := range q {
			tampered[k] = v
		}
		tampered.Set("shop", "evil.myshopify.com")
		assert.False(t, VerifyQueryHMAC(tampered, secret))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifyQueryHMAC(q, "other"))
	})

	t.Run("escaped values are signed unescaped", func(t *testing.T) {
		withHost := url.Values{}
		for k, v := range q {
			withHost[k] = v
		}
		withHost.Set("host", "YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZGVtbw==")
		withHost.Set("hmac", signQuery(secret, "code=abc&host=YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZGVtbw==&shop=demo.myshopify.com&state=xyz&timestamp=1700000000"))
		assert.True(t, VerifyQueryHMAC(withHost, secret))
	})

	t.Run("missing hmac", func(t *testing.T) {
		missing := url.Values{"shop": {"demo.myshopify.com"}}
		assert.False(t, VerifyQueryHMAC(missing, secret))
	})
}

func TestSigner(t *testing.T) {
	s := NewSigner()

	state, err := s.Encode("secret", "user-1")
	assert.NoError(t, err)
	userID, ok := s.Decode("secret", state)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	body := []byte(`{"id":1}`)
	assert.True(t, s.VerifyWebhook(body, signBody("secret", body), "secret"))
	assert.False(t, s.VerifyWebhook(body, signBody("secret", body), "other"))
}
