package domain

import "time"

// RotationPeriod is how long after saving a secret its rotation reminder
// comes due.
const RotationPeriod = 365 * 24 * time.Hour

// Reminder schedules a rotation notice for one secret. Sent only ever flips
// false to true.
type Reminder struct {
	ID       int64
	UserID   int64
	SecretID int64
	DueDate  time.Time // date-granular, see DateOnly
	Sent     bool
}

// DueReminder is a due, unsent reminder joined with the owning secret's
// service name, as consumed by the reminder sweep.
type DueReminder struct {
	ReminderID  int64
	UserID      int64
	SecretID    int64
	ServiceName string
	DueDate     time.Time
}

// DateOnly truncates t to midnight UTC. Reminder due dates carry no time
// component; comparisons happen at date granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
