package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key := []byte("session key material for testing")

	for _, plaintext := range []string{
		"hunter2",
		"",
		"пароль с юникодом 🔐",
		"a longer plaintext that spans more than one cipher block worth of bytes",
	} {
		ciphertext, recordSalt, err := Encrypt(plaintext, key)
		require.NoError(t, err)
		require.Len(t, recordSalt, SaltLength)
		if plaintext != "" {
			require.NotContains(t, string(ciphertext), plaintext)
		}

		got, err := Decrypt(ciphertext, recordSalt, key)
		require.NoError(t, err)
		require.Equal(t, plaintext, got)
	}
}

func TestEncryptUsesFreshSaltPerRecord(t *testing.T) {
	t.Parallel()

	key := []byte("key")
	c1, s1, err := Encrypt("same plaintext", key)
	require.NoError(t, err)
	c2, s2, err := Encrypt("same plaintext", key)
	require.NoError(t, err)

	require.NotEqual(t, s1, s2)
	require.NotEqual(t, c1, c2)
}

func TestDecryptFailures(t *testing.T) {
	t.Parallel()

	key := []byte("key material")
	ciphertext, recordSalt, err := Encrypt("payload", key)
	require.NoError(t, err)

	t.Run("wrong key material", func(t *testing.T) {
		_, err := Decrypt(ciphertext, recordSalt, []byte("wrong key"))
		require.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("wrong record salt", func(t *testing.T) {
		other, err := NewSalt(SaltLength)
		require.NoError(t, err)
		_, err = Decrypt(ciphertext, other, key)
		require.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := append([]byte(nil), ciphertext...)
		tampered[len(tampered)-1] ^= 0x01
		_, err := Decrypt(tampered, recordSalt, key)
		require.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		_, err := Decrypt(ciphertext[:8], recordSalt, key)
		require.ErrorIs(t, err, ErrDecryptFailed)
	})
}
