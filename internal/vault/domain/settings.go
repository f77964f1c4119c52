package domain

import (
	"errors"
	"fmt"
)

// Settings bounds accepted by Validate.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 32
)

var (
	// ErrInvalidLength reports a password length outside the accepted range.
	ErrInvalidLength = errors.New("password length must be between 8 and 32")

	// ErrNoClassesEnabled reports settings with every character class disabled.
	ErrNoClassesEnabled = errors.New("at least one character class must be enabled")
)

// Settings is the per-user password generation policy. One row exists per
// user, created alongside the user with DefaultSettings.
type Settings struct {
	Length       int
	UseUppercase bool
	UseLowercase bool
	UseDigits    bool
	UseSpecial   bool
}

// DefaultSettings returns the policy applied to new users and to users whose
// settings row is absent.
func DefaultSettings() Settings {
	return Settings{
		Length:       16,
		UseUppercase: true,
		UseLowercase: true,
		UseDigits:    true,
		UseSpecial:   false,
	}
}

// Validate checks the settings against the accepted bounds and reports the
// specific violated constraint.
func (s Settings) Validate() error {
	if s.Length < MinPasswordLength || s.Length > MaxPasswordLength {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, s.Length)
	}
	if !s.UseUppercase && !s.UseLowercase && !s.UseDigits && !s.UseSpecial {
		return ErrNoClassesEnabled
	}
	return nil
}
