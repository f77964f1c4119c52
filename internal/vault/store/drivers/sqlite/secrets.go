package sqlite

import (
	"context"

	"github.com/vaultling/vaultling/internal/vault/domain"
)

type secretsRepo struct {
	q querier
}

func (r *secretsRepo) Create(ctx context.Context, s domain.Secret) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO secrets (user_id, service_name, ciphertext, record_salt, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.UserID, s.ServiceName, s.Ciphertext, s.RecordSalt, s.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *secretsRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Secret, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, service_name, ciphertext, record_salt, created_at
		 FROM secrets WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var secrets []domain.Secret
	for rows.Next() {
		var s domain.Secret
		if err := rows.Scan(&s.ID, &s.UserID, &s.ServiceName, &s.Ciphertext, &s.RecordSalt, &s.CreatedAt); err != nil {
			return nil, err
		}
		secrets = append(secrets, s)
	}
	return secrets, rows.Err()
}

func (r *secretsRepo) Get(ctx context.Context, id, userID int64) (domain.Secret, error) {
	var s domain.Secret
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, service_name, ciphertext, record_salt, created_at
		 FROM secrets WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&s.ID, &s.UserID, &s.ServiceName, &s.Ciphertext, &s.RecordSalt, &s.CreatedAt)
	if err != nil {
		return domain.Secret{}, mapNotFound(err)
	}
	return s, nil
}

func (r *secretsRepo) Delete(ctx context.Context, id, userID int64) error {
	// Scoped by owner; deleting someone else's secret is a silent no-op.
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM secrets WHERE id = ? AND user_id = ?`, id, userID,
	)
	return err
}
