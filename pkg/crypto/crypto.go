// Package crypto реализует симметричное шифрование текста сообщений.
// Шифртекст передается и хранится в base64 (nonce || ciphertext).
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeyLen - длина ключа XChaCha20-Poly1305
const KeyLen = chacha20poly1305.KeySize

var (
	ErrInvalidKey        = errors.New("invalid encryption key length")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Cipher шифрует и расшифровывает тела сообщений одним ключом сервиса
type Cipher struct {
	key []byte
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeyLen {
		return nil, ErrInvalidKey
	}
	return &Cipher{key: key}, nil
}

// NewCipherFromBase64 разбирает ключ из конфигурации
func NewCipherFromBase64(encoded string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return NewCipher(key)
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, []byte(plaintext), nil)...)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", ErrInvalidCiphertext
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := raw[:chacha20poly1305.NonceSizeX]
	ct := raw[chacha20poly1305.NonceSizeX:]

	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
