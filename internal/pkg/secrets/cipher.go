package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/env"
)

const (
	keyLen   = 32
	nonceLen = 12
	tagLen   = 16
)

// ParseKey resolves key material given as either a 64-character hex string
// or a base64 string. Both forms must decode to exactly 32 bytes.
func ParseKey(material string) ([]byte, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("cipher key is not configured: %w", apperrors.ErrConfiguration)
	}
	if len(material) == keyLen*2 {
		if key, err := hex.DecodeString(material); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		return nil, fmt.Errorf("cipher key is neither hex nor base64: %w", apperrors.ErrConfiguration)
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d: %w", keyLen, len(key), apperrors.ErrConfiguration)
	}
	return key, nil
}

// KeyFromEnv loads the cipher key from SECRET_CIPHER_KEY. The key is checked
// at call time, not startup, so the rest of the system runs without the
// secondary-credential feature when it is absent.
func KeyFromEnv() ([]byte, error) {
	return ParseKey(env.GetEnv("SECRET_CIPHER_KEY", ""))
}

// Encrypt seals plaintext with AES-256-GCM and a fresh random nonce.
// The result is base64(nonce || tag || ciphertext), self-contained so no
// separate metadata storage is needed.
func Encrypt(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal appends the tag after the ciphertext; the stored layout is
	// nonce || tag || ciphertext.
	ct := sealed[:len(sealed)-tagLen]
	tag := sealed[len(sealed)-tagLen:]
	blob := make([]byte, 0, nonceLen+tagLen+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. A failed authentication tag
// (tampering or wrong key) yields an IntegrityError, never garbage output.
func Decrypt(blob string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return "", fmt.Errorf("invalid blob encoding: %w", apperrors.ErrIntegrity)
	}
	if len(raw) < nonceLen+tagLen {
		return "", fmt.Errorf("blob too short: %w", apperrors.ErrIntegrity)
	}
	nonce := raw[:nonceLen]
	tag := raw[nonceLen : nonceLen+tagLen]
	ct := raw[nonceLen+tagLen:]
	sealed := make([]byte, 0, len(ct)+tagLen)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("cipher authentication failed: %w", apperrors.ErrIntegrity)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("cipher key must be %d bytes: %w", keyLen, apperrors.ErrConfiguration)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
