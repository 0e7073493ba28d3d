package util

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"unicode"

	"golang.org/x/crypto/argon2"
)

var (
	ErrNotEncrypted  = errors.New("data is not an encrypted backup")
	ErrBadPassphrase = errors.New("wrong passphrase or corrupted backup")
)

var sealMagic = []byte("PTBK1")

const (
	saltLen     = 16
	keyLen      = 32
	argonTime   = 1
	argonMemory = 64 * 1024
	argonLanes  = 4
)

func ValidatePassphrase(pass string) error {
	if len([]rune(pass)) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range pass {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("passphrase must contain a letter and a digit")
	}
	return nil
}

// DeriveKey stretches a passphrase into an AES-256 key with argon2id.
func DeriveKey(pass string, salt []byte) []byte {
	return argon2.IDKey([]byte(pass), salt, argonTime, argonMemory, argonLanes, keyLen)
}

// IsSealed reports whether data carries the encrypted backup header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}

// Seal encrypts plaintext as magic || salt || nonce || ciphertext.
func Seal(pass string, plaintext []byte) ([]byte, error) {
	if err := ValidatePassphrase(pass); err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	gcm, err := newGCM(DeriveKey(pass, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	out := make([]byte, 0, len(sealMagic)+saltLen+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, sealMagic), nil
}

// Unseal reverses Seal.
func Unseal(pass string, data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, ErrNotEncrypted
	}
	rest := data[len(sealMagic):]
	if len(rest) < saltLen {
		return nil, ErrBadPassphrase
	}
	salt, rest := rest[:saltLen], rest[saltLen:]
	gcm, err := newGCM(DeriveKey(pass, salt))
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, ErrBadPassphrase
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, sealMagic)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}
