// Package vault encrypts tenant secrets at rest and resolves effective
// credentials for (tenant, marketplace) pairs, falling back to operator-wide
// defaults when a tenant has no active record.
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Errors for the cipher
var (
	// ErrInvalidKey indicates the master key material is unusable
	ErrInvalidKey = errors.New("vault: master key must be 32 bytes")
	// ErrDecryptFailed indicates a stored secret could not be recovered.
	// Never retried: it means either a wrong key or a corrupted payload.
	ErrDecryptFailed = errors.New("vault: decryption failed")
	// ErrInvalidRawKey indicates a credential value failed the pre-encryption
	// sanity check
	ErrInvalidRawKey = errors.New("vault: raw credential value out of bounds")
)

const (
	// keySize is the AES-256 key length in bytes
	keySize = 32
	// derivationIterations is the pbkdf2 round count for passphrase keys
	derivationIterations = 4096
	// rawKeyMinLen / rawKeyMaxLen bound acceptable raw credential values
	rawKeyMinLen = 10
	rawKeyMaxLen = 200
)

// derivationSalt is fixed application-wide; uniqueness comes from the
// passphrase, and a stable salt keeps derived keys reproducible across
// restarts.
var derivationSalt = []byte("entegra-credential-vault-v1")

// Cipher encrypts and decrypts credential values with AES-256-CBC under a
// process-wide key loaded once at startup. Every encryption uses a fresh
// random IV, so two encryptions of the same plaintext differ.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher from raw 32-byte key material
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	c := &Cipher{key: make([]byte, keySize)}
	copy(c.key, key)
	return c, nil
}

// NewCipherFromSecret creates a Cipher from operator-supplied key material:
// a 64-hex-character string is used directly as the key; anything else is
// treated as a passphrase and stretched with PBKDF2-SHA256.
func NewCipherFromSecret(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("vault: encryption key is required: %w", ErrInvalidKey)
	}
	if len(secret) == keySize*2 {
		if key, err := hex.DecodeString(secret); err == nil {
			return NewCipher(key)
		}
	}
	key := pbkdf2.Key([]byte(secret), derivationSalt, derivationIterations, keySize, sha256.New)
	return NewCipher(key)
}

// Encrypt encrypts plaintext and returns it in "ivHex:cipherHex" form
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Malformed payloads and wrong-key decryptions
// surface as errors wrapping ErrDecryptFailed.
func (c *Cipher) Decrypt(value string) (string, error) {
	ivHex, cipherHex, found := strings.Cut(value, ":")
	if !found {
		return "", fmt.Errorf("%w: missing iv separator", ErrDecryptFailed)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: malformed iv", ErrDecryptFailed)
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: malformed ciphertext", ErrDecryptFailed)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		// Wrong key produces garbage padding
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return string(unpadded), nil
}

// IsEncrypted reports whether a stored value looks like vault output.
// Legacy plaintext values carry no ":" separator.
func IsEncrypted(value string) bool {
	return strings.Contains(value, ":")
}

// ValidateRawKey sanity-checks a credential value before encryption
func ValidateRawKey(key string) bool {
	if len(key) < rawKeyMinLen || len(key) > rawKeyMaxLen {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// pkcs7Pad pads data to a multiple of blockSize
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad strips and validates PKCS#7 padding
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("invalid padding length")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("invalid padding byte")
		}
	}
	return data[:len(data)-padLen], nil
}
