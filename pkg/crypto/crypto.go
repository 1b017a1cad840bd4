package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// Crypto encrypts credentials stored in connection profiles.
type Crypto struct {
	aesKey []byte // AES-256, 32 bytes
}

// NewCrypto derives the AES-256 key from the configured credential key.
// Keys of 32 bytes or more are truncated, shorter ones are hashed.
func NewCrypto(credentialKey string) *Crypto {
	key := []byte(credentialKey)
	if len(key) == 0 {
		// development only
		key = []byte("exabanque-dev-credential-key-change-me-in-production-please!!!!")
	}

	return &Crypto{
		aesKey: extract32BytesForAES(key),
	}
}

func extract32BytesForAES(key []byte) []byte {
	if len(key) >= 32 {
		return key[:32]
	}
	hash := sha256.Sum256(key)
	return hash[:]
}

// Encrypt seals plaintext with AES-GCM and returns base64(nonce|ciphertext).
// The empty string stays empty so unset credentials remain recognisable.
func (c *Crypto) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt.
func (c *Crypto) Decrypt(encryptedText string) (string, error) {
	if encryptedText == "" {
		return "", nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		return "", err
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether text looks like Encrypt output.
func (c *Crypto) IsEncrypted(text string) bool {
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return false
	}

	gcm, err := c.gcm()
	if err != nil {
		return false
	}
	return len(decoded) > gcm.NonceSize()+gcm.Overhead()
}

func (c *Crypto) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.aesKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
