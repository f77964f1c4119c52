package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaultling/vaultling/internal/vault/domain"
	"github.com/vaultling/vaultling/internal/vault/store"
	"github.com/vaultling/vaultling/pkg/cryptox"
	"github.com/vaultling/vaultling/pkg/passgen"
)

// MinMasterPasswordLength is the weakest master password accepted at enrolment.
const MinMasterPasswordLength = 6

var (
	// ErrAuthenticationFailed reports a wrong master password or an unknown
	// user. The two cases are deliberately indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTooManyAttempts reports that the per-user attempt limiter tripped.
	ErrTooManyAttempts = errors.New("too many authentication attempts")

	// ErrWeakMasterPassword reports an enrolment password below the minimum length.
	ErrWeakMasterPassword = fmt.Errorf("master password must be at least %d characters", MinMasterPasswordLength)

	// ErrServiceNameTooLong reports a service name over the accepted cap.
	ErrServiceNameTooLong = fmt.Errorf("service name must be at most %d characters", domain.MaxServiceNameLength)

	// ErrServiceNameEmpty reports a blank service name.
	ErrServiceNameEmpty = errors.New("service name must not be empty")
)

// VaultService implements the per-user vault operations: enrolment, master
// password verification, settings, and the secret lifecycle. Key material is
// derived inside each call from the submitted master password and discarded
// when the call returns; nothing key-shaped is ever cached or persisted.
type VaultService struct {
	Store    store.Store
	Attempts *AttemptLimiter // nil disables attempt limiting

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *VaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enroll creates a user with a fresh salt and default settings in one
// transaction. A second enrolment for the same id returns ErrAlreadyExists.
func (s *VaultService) Enroll(ctx context.Context, userID int64, masterPassword string) error {
	if len(masterPassword) < MinMasterPasswordLength {
		return ErrWeakMasterPassword
	}

	salt, err := cryptox.NewSalt(cryptox.SaltLength)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:                 userID,
		MasterPasswordHash: cryptox.HashMasterPassword(masterPassword, salt),
		Salt:               salt,
		CreatedAt:          s.now().UTC(),
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		return tx.Settings().Upsert(ctx, userID, domain.DefaultSettings())
	})
}

// Authenticate verifies the master password for a user. An absent user and a
// wrong password both return ErrAuthenticationFailed; the hash comparison runs
// in constant time either way.
func (s *VaultService) Authenticate(ctx context.Context, userID int64, password string) error {
	if s.Attempts != nil && !s.Attempts.Allow(userID) {
		return ErrTooManyAttempts
	}

	u, err := s.Store.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// Burn a derivation anyway so unknown ids cost the same as mismatches.
		cryptox.VerifyMasterPassword(strings.Repeat("0", 64), make([]byte, cryptox.SaltLength), password)
		return ErrAuthenticationFailed
	}
	if err != nil {
		return err
	}

	if !cryptox.VerifyMasterPassword(u.MasterPasswordHash, u.Salt, password) {
		return ErrAuthenticationFailed
	}
	return nil
}

// IsEnrolled reports whether a user has set a master password.
func (s *VaultService) IsEnrolled(ctx context.Context, userID int64) (bool, error) {
	return s.Store.Users().Exists(ctx, userID)
}

// GetSettings returns the user's stored settings, falling back to defaults
// when no row exists. Absence is not an error.
func (s *VaultService) GetSettings(ctx context.Context, userID int64) (domain.Settings, error) {
	settings, err := s.Store.Settings().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// UpdateSettings validates and upserts the user's generation policy.
func (s *VaultService) UpdateSettings(ctx context.Context, userID int64, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return retryBusy(func() error {
		return s.Store.Settings().Upsert(ctx, userID, settings)
	})
}

// GeneratePassword produces a candidate password from the user's settings.
// The result is not persisted; callers decide whether to save it.
func (s *VaultService) GeneratePassword(ctx context.Context, userID int64) (string, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return "", err
	}
	return passgen.Generate(passgen.Policy{
		Length:    settings.Length,
		Uppercase: settings.UseUppercase,
		Lowercase: settings.UseLowercase,
		Digits:    settings.UseDigits,
		Special:   settings.UseSpecial,
	})
}

// SaveSecret authenticates, encrypts the plaintext under a session key derived
// from the master password, and stores the secret together with its rotation
// reminder (due one rotation period out) in a single transaction. Returns the
// new secret id.
func (s *VaultService) SaveSecret(ctx context.Context, userID int64, masterPassword, serviceName, plaintext string) (int64, error) {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		return 0, ErrServiceNameEmpty
	}
	if len(serviceName) > domain.MaxServiceNameLength {
		return 0, ErrServiceNameTooLong
	}

	if err := s.Authenticate(ctx, userID, masterPassword); err != nil {
		return 0, err
	}
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	key := cryptox.SessionKey(masterPassword, u.Salt)
	ciphertext, recordSalt, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	var secretID int64
	err = retryBusy(func() error {
		return s.Store.WithTx(ctx, func(tx store.Tx) error {
			id, err := tx.Secrets().Create(ctx, domain.Secret{
				UserID:      userID,
				ServiceName: serviceName,
				Ciphertext:  ciphertext,
				RecordSalt:  recordSalt,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			secretID = id
			_, err = tx.Reminders().Create(ctx, domain.Reminder{
				UserID:   userID,
				SecretID: id,
				DueDate:  now.Add(domain.RotationPeriod),
			})
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	return secretID, nil
}

// ListSecrets returns the user's secrets newest first, without decrypting.
func (s *VaultService) ListSecrets(ctx context.Context, userID int64) ([]domain.Secret, error) {
	return s.Store.Secrets().ListByUser(ctx, userID)
}

// RevealSecret authenticates and decrypts one secret, scoped by owner.
func (s *VaultService) RevealSecret(ctx context.Context, userID int64, masterPassword string, secretID int64) (string, error) {
	if err := s.Authenticate(ctx, userID, masterPassword); err != nil {
		return "", err
	}
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	secret, err := s.Store.Secrets().Get(ctx, secretID, userID)
	if err != nil {
		return "", err
	}
	return cryptox.Decrypt(secret.Ciphertext, secret.RecordSalt, cryptox.SessionKey(masterPassword, u.Salt))
}

// RevealedSecret is one entry of RevealAll. A corrupted record reports its
// decryption failure in Err without affecting its siblings.
type RevealedSecret struct {
	ID          int64
	ServiceName string
	CreatedAt   time.Time
	Password    string
	Err         error
}

// RevealAll authenticates once and decrypts every stored secret. Per-record
// decryption failures never abort the listing.
func (s *VaultService) RevealAll(ctx context.Context, userID int64, masterPassword string) ([]RevealedSecret, error) {
	if err := s.Authenticate(ctx, userID, masterPassword); err != nil {
		return nil, err
	}
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	secrets, err := s.Store.Secrets().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := cryptox.SessionKey(masterPassword, u.Salt)
	out := make([]RevealedSecret, 0, len(secrets))
	for _, secret := range secrets {
		entry := RevealedSecret{
			ID:          secret.ID,
			ServiceName: secret.ServiceName,
			CreatedAt:   secret.CreatedAt,
		}
		entry.Password, entry.Err = cryptox.Decrypt(secret.Ciphertext, secret.RecordSalt, key)
		out = append(out, entry)
	}
	return out, nil
}

// DeleteSecret removes a secret owned by the user. Missing or unowned ids are
// a no-op. The secret's pending reminder is cancelled by the schema cascade.
func (s *VaultService) DeleteSecret(ctx context.Context, userID, secretID int64) error {
	return retryBusy(func() error {
		return s.Store.Secrets().Delete(ctx, secretID, userID)
	})
}
