package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// Box seals journal text at rest and derives blind indexes for fields that
// must stay searchable by exact value (emails).
type Box struct {
	aead          cipher.AEAD
	blindIndexKey []byte
}

// NewBox expects a 32 byte AES-256 key and a 32 byte HMAC-SHA256 key.
func NewBox(encryptionKey, blindIndexKey []byte) (*Box, error) {
	if len(encryptionKey) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	if len(blindIndexKey) != 32 {
		return nil, errors.New("blind index key must be 32 bytes")
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: gcm, blindIndexKey: blindIndexKey}, nil
}

// DecodeKey parses a base64 key from configuration.
func DecodeKey(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Seal returns base64(nonce || ciphertext). Empty input stays empty.
func (b *Box) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	n := b.aead.NonceSize()
	if len(data) < n {
		return "", errors.New("ciphertext too short")
	}
	plaintext, err := b.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// SealAll seals every field in place, stopping at the first error.
func (b *Box) SealAll(fields ...*string) error {
	for _, f := range fields {
		v, err := b.Seal(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// OpenAll is the inverse of SealAll.
func (b *Box) OpenAll(fields ...*string) error {
	for _, f := range fields {
		v, err := b.Open(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// BlindIndex is a deterministic HMAC of plaintext for equality lookups.
func (b *Box) BlindIndex(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	h := hmac.New(sha256.New, b.blindIndexKey)
	h.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
