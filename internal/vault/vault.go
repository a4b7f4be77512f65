// Package vault decrypts per-repository access credentials stored by the
// external credential service. Payload format: hex(iv) + ":" + hex(cipher),
// AES-256-CBC with PKCS#7 padding, key derived from the shared secret via
// scrypt. Decrypted values must never be logged and should live only for the
// single call that needs them.
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	keyLen  = 32
	keySalt = "salt"
)

// ErrMalformed means the payload is not in the iv:cipher format or fails to
// decrypt with the configured key.
var ErrMalformed = errors.New("vault: malformed encrypted payload")

// Vault holds the derived symmetric key.
type Vault struct {
	key []byte
}

// New derives the AES key from secret. The salt is fixed so independently
// deployed services derive the same key from the same shared secret.
func New(secret string) (*Vault, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("vault: secret is required")
	}
	key, err := scrypt.Key([]byte(secret), []byte(keySalt), 16384, 8, 1, keyLen)
	if err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	return &Vault{key: key}, nil
}

// Decrypt reverses Encrypt. An empty payload decrypts to an empty string,
// matching the absent-credential (public repository) case.
func (v *Vault) Decrypt(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		return "", ErrMalformed
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformed
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformed
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	plain, err = stripPadding(plain)
	if err != nil {
		return "", ErrMalformed
	}
	return string(plain), nil
}

// Encrypt is the inverse of Decrypt; the service itself only decrypts, but
// tests and fixtures need to produce payloads in the stored format.
func (v *Vault) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	padded := addPadding([]byte(plain))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

func addPadding(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func stripPadding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}
