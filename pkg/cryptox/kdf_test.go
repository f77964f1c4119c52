package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveDeterminism(t *testing.T) {
	t.Parallel()

	secret := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	a := Derive(secret, salt, 1000, 32)
	b := Derive(secret, salt, 1000, 32)
	require.Equal(t, a, b)
	require.Len(t, a, 32)

	t.Run("changing the secret changes the output", func(t *testing.T) {
		require.NotEqual(t, a, Derive([]byte("other"), salt, 1000, 32))
	})

	t.Run("changing the salt changes the output", func(t *testing.T) {
		require.NotEqual(t, a, Derive(secret, []byte("fedcba9876543210"), 1000, 32))
	})

	t.Run("changing the iteration count changes the output", func(t *testing.T) {
		require.NotEqual(t, a, Derive(secret, salt, 1001, 32))
	})
}

func TestNewSalt(t *testing.T) {
	t.Parallel()

	a, err := NewSalt(SaltLength)
	require.NoError(t, err)
	require.Len(t, a, SaltLength)

	b, err := NewSalt(SaltLength)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyMasterPassword(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt(SaltLength)
	require.NoError(t, err)
	stored := HashMasterPassword("secret1", salt)

	t.Run("correct password verifies", func(t *testing.T) {
		require.True(t, VerifyMasterPassword(stored, salt, "secret1"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		require.False(t, VerifyMasterPassword(stored, salt, "secret2"))
	})

	t.Run("wrong salt fails", func(t *testing.T) {
		other, err := NewSalt(SaltLength)
		require.NoError(t, err)
		require.False(t, VerifyMasterPassword(stored, other, "secret1"))
	})

	t.Run("malformed stored hash fails without panicking", func(t *testing.T) {
		require.False(t, VerifyMasterPassword("not-hex!", salt, "secret1"))
		require.False(t, VerifyMasterPassword("", salt, "secret1"))
	})
}
