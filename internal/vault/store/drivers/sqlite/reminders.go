package sqlite

import (
	"context"
	"time"

	"github.com/vaultling/vaultling/internal/vault/domain"
)

type remindersRepo struct {
	q querier
}

func (r *remindersRepo) Create(ctx context.Context, rem domain.Reminder) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO reminders (user_id, secret_id, due_date, sent)
		 VALUES (?, ?, ?, 0)`,
		rem.UserID, rem.SecretID, domain.DateOnly(rem.DueDate),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *remindersRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.DueReminder, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.secret_id, s.service_name, r.due_date
		 FROM reminders r
		 JOIN secrets s ON s.id = r.secret_id
		 WHERE r.due_date <= ? AND r.sent = 0
		 ORDER BY r.due_date, r.id`,
		domain.DateOnly(asOf),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.DueReminder
	for rows.Next() {
		var d domain.DueReminder
		if err := rows.Scan(&d.ReminderID, &d.UserID, &d.SecretID, &d.ServiceName, &d.DueDate); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *remindersRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE reminders SET sent = 1 WHERE id = ?`, id,
	)
	return err
}
