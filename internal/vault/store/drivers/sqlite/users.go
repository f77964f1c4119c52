package sqlite

import (
	"context"
	"strings"

	"github.com/vaultling/vaultling/internal/vault/domain"
	"github.com/vaultling/vaultling/internal/vault/store"
)

type usersRepo struct {
	q querier
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (user_id, master_password_hash, salt, created_at)
		 VALUES (?, ?, ?, ?)`,
		u.ID, u.MasterPasswordHash, u.Salt, u.CreatedAt.UTC(),
	)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, master_password_hash, salt, created_at
		 FROM users WHERE user_id = ?`, id,
	).Scan(&u.ID, &u.MasterPasswordHash, &u.Salt, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id = ?`, id,
	).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case mapNotFound(err) == store.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

// isUniqueViolation detects SQLITE_CONSTRAINT_UNIQUE / PRIMARYKEY failures.
// modernc.org/sqlite surfaces them as plain errors, so match on the message.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
