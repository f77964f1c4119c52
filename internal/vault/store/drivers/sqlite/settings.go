package sqlite

import (
	"context"

	"github.com/vaultling/vaultling/internal/vault/domain"
)

type settingsRepo struct {
	q querier
}

func (r *settingsRepo) Get(ctx context.Context, userID int64) (domain.Settings, error) {
	var s domain.Settings
	err := r.q.QueryRowContext(ctx,
		`SELECT length, use_uppercase, use_lowercase, use_digits, use_special
		 FROM settings WHERE user_id = ?`, userID,
	).Scan(&s.Length, &s.UseUppercase, &s.UseLowercase, &s.UseDigits, &s.UseSpecial)
	if err != nil {
		return domain.Settings{}, mapNotFound(err)
	}
	return s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, userID int64, s domain.Settings) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO settings (user_id, length, use_uppercase, use_lowercase, use_digits, use_special)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     length = excluded.length,
		     use_uppercase = excluded.use_uppercase,
		     use_lowercase = excluded.use_lowercase,
		     use_digits = excluded.use_digits,
		     use_special = excluded.use_special`,
		userID, s.Length, s.UseUppercase, s.UseLowercase, s.UseDigits, s.UseSpecial,
	)
	return err
}
