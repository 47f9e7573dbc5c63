package shopify

import (
	"net/url"
)

// Signer implements ports.StateCodec and ports.SignatureVerifier for any app secret.
type Signer struct{}

func NewSigner() *Signer {
	return &Signer{}
}

func (Signer) Encode(secret, userID string) (string, error) {
	return NewStateCodec(secret).Encode(userID)
}

func (Signer) Decode(secret, state string) (string, bool) {
	return NewStateCodec(secret).Decode(state)
}

func (Signer) VerifyQuery(query url.Values, secret string) bool {
	return VerifyQueryHMAC(query, secret)
}

func (Signer) VerifyWebhook(body []byte, header, secret string) bool {
	return NewWebhookVerifier(secret).Verify(body, header) == nil
}
