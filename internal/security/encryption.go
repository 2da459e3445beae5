// Package security derives an AES-256 key from an operator-supplied secret
// via Argon2id and uses it to encrypt idempotency results at rest and to
// hash static bearer tokens before comparison.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	kdfKeyLen  = 32
	kdfSaltLen = 16
)

// Encryptor encrypts and decrypts small payloads with AES-256-GCM. The key
// is derived from an operator secret with Argon2id rather than taken
// verbatim, so a short or low-entropy secret still yields a full-strength key.
type Encryptor struct {
	key []byte
}

// NewEncryptor derives a 32-byte key from secret and a fixed application
// salt. The salt is fixed (not random) because the key must be
// reproducible across process restarts without a side channel to store it.
func NewEncryptor(secret string) *Encryptor {
	salt := []byte("acp-checkout-gateway-idempotency-kdf-salt")
	key := argon2.IDKey([]byte(secret), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
	return &Encryptor{key: key}
}

// Encrypt returns plaintext sealed with AES-256-GCM, hex-encoded as
// nonce||ciphertext.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encryptor: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("encryptor: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("encryptor: nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(ciphertextHex string) (string, error) {
	raw, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("encryptor: decode: %w", err)
	}
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encryptor: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("encryptor: new gcm: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("encryptor: ciphertext too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("encryptor: open: %w", err)
	}
	return string(plaintext), nil
}

// HashToken derives a salted Argon2id digest of a static bearer token so it
// is never stored or compared in plaintext.
func HashToken(token string, salt []byte) []byte {
	return argon2.IDKey([]byte(token), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
}

// NewSalt returns a fresh random salt for HashToken.
func NewSalt() ([]byte, error) {
	salt := make([]byte, kdfSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("security: generate salt: %w", err)
	}
	return salt, nil
}

// ConstantTimeEqual compares two digests without leaking timing information.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
