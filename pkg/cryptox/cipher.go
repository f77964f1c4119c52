package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecryptFailed reports a ciphertext that could not be authenticated or
// opened with the supplied key material and record salt.
var ErrDecryptFailed = errors.New("cryptox: decryption failed")

// Encrypt seals plaintext under a key stretched from keyMaterial and a fresh
// random record salt. The salt must be persisted alongside the ciphertext;
// without it the record cannot be decrypted. Each call uses a new salt and
// nonce, so encrypting the same plaintext twice yields distinct ciphertexts.
func Encrypt(plaintext string, keyMaterial []byte) (ciphertext, recordSalt []byte, err error) {
	recordSalt, err = NewSalt(SaltLength)
	if err != nil {
		return nil, nil, err
	}

	aead, err := chacha20poly1305.NewX(Derive(keyMaterial, recordSalt, Iterations, KeyLength))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to construct cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Nonce is prepended so the record stays self-contained next to its salt.
	ciphertext = aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ciphertext, recordSalt, nil
}

// Decrypt re-derives the record key from keyMaterial and recordSalt and opens
// the ciphertext. Tampered or mispaired records return ErrDecryptFailed.
func Decrypt(ciphertext, recordSalt, keyMaterial []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(Derive(keyMaterial, recordSalt, Iterations, KeyLength))
	if err != nil {
		return "", fmt.Errorf("failed to construct cipher: %w", err)
	}

	if len(ciphertext) < aead.NonceSize() {
		return "", ErrDecryptFailed
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
