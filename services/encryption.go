package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"safeher/apperrors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// PhoneCipher encrypts contact phone numbers at rest. Ciphertext is
// "<nonce hex>:<sealed hex>".
type PhoneCipher struct {
	key     []byte
	hashKey []byte
}

func NewPhoneCipher(key string) (*PhoneCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	hashKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(key), nil, []byte("safeher phone hash"))
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("derive hash key: %w", err)
	}

	return &PhoneCipher{key: []byte(key), hashKey: hashKey}, nil
}

func (p *PhoneCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return "", apperrors.Encryption(err, "init cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", apperrors.Encryption(err, "generate nonce")
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

func (p *PhoneCipher) Decrypt(ciphertext string) (string, error) {
	nonceHex, sealedHex, ok := strings.Cut(ciphertext, ":")
	if !ok {
		return "", apperrors.Encryption(nil, "malformed ciphertext")
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != chacha20poly1305.NonceSizeX {
		return "", apperrors.Encryption(err, "malformed nonce")
	}
	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", apperrors.Encryption(err, "malformed ciphertext")
	}

	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return "", apperrors.Encryption(err, "init cipher")
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperrors.Encryption(err, "authentication failed")
	}
	return string(plain), nil
}

// Hash returns a keyed digest of the normalised number, stable across calls,
// so duplicate checks never need plaintext at rest.
func (p *PhoneCipher) Hash(phone string) string {
	mac := hmac.New(sha256.New, p.hashKey)
	mac.Write([]byte(DigitsOnly(phone)))
	return hex.EncodeToString(mac.Sum(nil))
}

func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
