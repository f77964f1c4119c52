// Package passgen generates random passwords that satisfy per-user character
// class constraints, drawing exclusively from crypto/rand.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Class identifies one character category. The order is fixed so the
// "at least one per enabled class" guarantee is reproducible.
type Class int

const (
	Uppercase Class = iota
	Lowercase
	Digits
	Special
)

var classAlphabets = [...]string{
	Uppercase: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	Lowercase: "abcdefghijklmnopqrstuvwxyz",
	Digits:    "0123456789",
	Special:   "!@#$%^&*()_+-=[]{}|;:,.<>?",
}

var (
	// ErrNoClassesEnabled reports a policy with every character class disabled.
	ErrNoClassesEnabled = errors.New("passgen: no character classes enabled")

	// ErrLengthTooShort reports a length smaller than the number of enabled
	// classes, which would make class coverage impossible.
	ErrLengthTooShort = errors.New("passgen: length is less than the number of enabled classes")
)

// Policy describes the shape of a generated password.
type Policy struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Digits    bool
	Special   bool
}

func (p Policy) enabled() []Class {
	var classes []Class
	for _, c := range []Class{Uppercase, Lowercase, Digits, Special} {
		if p.classEnabled(c) {
			classes = append(classes, c)
		}
	}
	return classes
}

func (p Policy) classEnabled(c Class) bool {
	switch c {
	case Uppercase:
		return p.Uppercase
	case Lowercase:
		return p.Lowercase
	case Digits:
		return p.Digits
	case Special:
		return p.Special
	}
	return false
}

// Generate produces a random password of exactly p.Length characters with at
// least one character from every enabled class. It draws one mandatory
// character per enabled class, fills the remainder from the union alphabet,
// then applies a secure shuffle so mandatory characters hold no fixed
// positions.
func Generate(p Policy) (string, error) {
	classes := p.enabled()
	if len(classes) == 0 {
		return "", ErrNoClassesEnabled
	}
	if p.Length < len(classes) {
		return "", fmt.Errorf("%w: length %d, classes %d", ErrLengthTooShort, p.Length, len(classes))
	}

	var union strings.Builder
	for _, c := range classes {
		union.WriteString(classAlphabets[c])
	}
	alphabet := union.String()

	out := make([]byte, 0, p.Length)
	for _, c := range classes {
		ch, err := pick(classAlphabets[c])
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}
	for len(out) < p.Length {
		ch, err := pick(alphabet)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// Contains reports whether s has at least one character from class c.
func Contains(s string, c Class) bool {
	return strings.ContainsAny(s, classAlphabets[c])
}

func pick(alphabet string) (byte, error) {
	i, err := randIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

// shuffle performs a Fisher-Yates shuffle with crypto/rand indices.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("passgen: random source failed: %w", err)
	}
	return int(v.Int64()), nil
}
