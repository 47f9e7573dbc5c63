package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"courier-shopify-layer/internal/domain"
)

const nonceSize = 12

// Service encrypts access tokens with AES-256-GCM. The key is the SHA-256 digest
// of the configured secret, so any non-empty secret yields a valid key.
type Service struct {
	aead cipher.AEAD
}

// NewService creates a cipher keyed by secret.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("encryption secret cannot be empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &Service{aead: aead}, nil
}

// Encrypt returns "hex(nonce):hex(ciphertext)". Each call uses a fresh nonce.
func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. A malformed value yields domain.ErrMalformedCiphertext;
// a value sealed under another key or altered in transit yields domain.ErrDecryptionFailed.
func (s *Service) Decrypt(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, ":")
	if len(parts) != 2 {
		return "", domain.ErrMalformedCiphertext
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", domain.ErrMalformedCiphertext
	}
	sealed, err := hex.DecodeString(parts[1])
	if err != nil || len(sealed) < s.aead.Overhead() {
		return "", domain.ErrMalformedCiphertext
	}
	plain, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(plain), nil
}
