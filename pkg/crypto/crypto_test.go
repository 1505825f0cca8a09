package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeyLen)
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	ct, err := c.Encrypt("Привет, offer inside")
	require.NoError(t, err)
	require.NotEqual(t, "Привет, offer inside", ct)

	pt, err := c.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, "Привет, offer inside", pt)
}

func TestCipher_EncryptIsRandomized(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	ct1, err := c.Encrypt("same body")
	require.NoError(t, err)
	ct2, err := c.Encrypt("same body")
	require.NoError(t, err)

	// Случайный nonce: два шифртекста одного текста не совпадают
	require.NotEqual(t, ct1, ct2)
}

func TestNewCipher_BadKeyLength(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewCipherFromBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(testKey())

	c, err := NewCipherFromBase64(encoded)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = NewCipherFromBase64("not base64!!!")
	require.Error(t, err)
}

func TestCipher_DecryptRejectsGarbage(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	_, err = c.Decrypt("%%%")
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	// Валидный base64, но слишком короткий для nonce
	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("tiny")))
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestCipher_DecryptRejectsTampered(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	ct, err := c.Encrypt("original")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestCipher_WrongKey(t *testing.T) {
	c1, err := NewCipher(testKey())
	require.NoError(t, err)
	c2, err := NewCipher(bytes.Repeat([]byte{0x24}, KeyLen))
	require.NoError(t, err)

	ct, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(ct)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}
