package store

import (
	"context"
	"errors"
	"time"

	"github.com/vaultling/vaultling/internal/vault/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep the entity contracts separate and
// testable while sharing one underlying connection.
type Store interface {
	Users() Users
	Settings() Settings
	Secrets() Secrets
	Reminders() Reminders

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use this for
	// multi-step mutations that must be atomic (user+settings enrolment,
	// secret+reminder creation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// Create inserts a new user. Returns ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, u domain.User) error

	// GetByID returns a user or ErrNotFound.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// Exists reports whether a user row exists without fetching it.
	Exists(ctx context.Context, id int64) (bool, error)
}

type Settings interface {
	// Get returns the stored settings for a user, or ErrNotFound when no row
	// exists. Callers decide whether absence means defaults.
	Get(ctx context.Context, userID int64) (domain.Settings, error)

	// Upsert replaces or inserts the settings row for a user.
	Upsert(ctx context.Context, userID int64, s domain.Settings) error
}

type Secrets interface {
	// Create inserts a secret and returns its store-assigned id.
	Create(ctx context.Context, s domain.Secret) (int64, error)

	// ListByUser returns the user's secrets, newest-created first.
	ListByUser(ctx context.Context, userID int64) ([]domain.Secret, error)

	// Get fetches a secret scoped by both ids; a secret id alone does not
	// authorize access. Returns ErrNotFound when absent or not owned.
	Get(ctx context.Context, id, userID int64) (domain.Secret, error)

	// Delete removes a secret scoped by owner. No-op when absent or unowned.
	// Pending reminders for the secret go with it (cascade).
	Delete(ctx context.Context, id, userID int64) error
}

type Reminders interface {
	// Create inserts a reminder with sent=false and returns its id.
	Create(ctx context.Context, r domain.Reminder) (int64, error)

	// ListDue returns reminders with due_date <= asOf and sent=false, joined
	// with the owning secret's service name.
	ListDue(ctx context.Context, asOf time.Time) ([]domain.DueReminder, error)

	// MarkSent flips sent to true. Idempotent and monotonic.
	MarkSent(ctx context.Context, id int64) error
}
