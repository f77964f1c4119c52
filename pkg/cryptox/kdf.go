package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. Iterations must not drop below 100k; stored
// verifiers and record keys both depend on the same stretch.
const (
	Iterations = 100_000
	KeyLength  = 32 // Derived key length in bytes
	SaltLength = 16 // Length of user and record salts
)

// Derive stretches a low-entropy secret into keyLen bytes of key material
// using PBKDF2-HMAC-SHA256. Identical inputs always yield identical output.
func Derive(secret, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(secret, salt, iterations, keyLen, sha256.New)
}

// NewSalt returns n cryptographically random bytes.
func NewSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashMasterPassword produces the storable hex-encoded verifier for a master
// password. The raw password is never persisted.
func HashMasterPassword(password string, salt []byte) string {
	return hex.EncodeToString(Derive([]byte(password), salt, Iterations, KeyLength))
}

// VerifyMasterPassword recomputes the verifier for candidate and compares it
// against the stored hash in constant time. A malformed stored hash verifies
// false rather than erroring; callers treat both the same way.
func VerifyMasterPassword(storedHash string, salt []byte, candidate string) bool {
	expected, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	computed := Derive([]byte(candidate), salt, Iterations, len(expected))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// SessionKey derives the symmetric key material for a user's vault session
// from their master password and per-user salt. The result must live only for
// the duration of the operation that needs it.
func SessionKey(masterPassword string, userSalt []byte) []byte {
	return Derive([]byte(masterPassword), userSalt, Iterations, KeyLength)
}
