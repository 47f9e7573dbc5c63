package shopify

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// StateCodec binds an OAuth round trip to the user that started it.
// The state is base64url("userID:nonce:hex(hmac)") signed with the app's client secret.
type StateCodec struct {
	secret []byte
}

// NewStateCodec creates a codec signing with secret.
func NewStateCodec(secret string) *StateCodec {
	return &StateCodec{secret: []byte(secret)}
}

// Encode produces a state value for userID.
func (c *StateCodec) Encode(userID string) (string, error) {
	if userID == "" || strings.Contains(userID, ":") {
		return "", errors.New("user id cannot be empty or contain ':'")
	}
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	nonce := hex.EncodeToString(raw)
	payload := userID + ":" + nonce
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + c.sign(payload))), nil
}

// Decode returns the user id carried by state. ok is false for anything not produced
// by Encode under the same secret.
func (c *StateCodec) Decode(state string) (string, bool) {
	if state == "" {
		return "", false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return "", false
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	expected := c.sign(parts[0] + ":" + parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", false
	}
	return parts[0], true
}

func (c *StateCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
