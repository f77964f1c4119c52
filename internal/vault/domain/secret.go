package domain

import "time"

// MaxServiceNameLength caps service names accepted at save time. Stored rows
// are not re-validated against it.
const MaxServiceNameLength = 50

// Secret is one stored password entry. Ciphertext can only be opened with the
// record salt persisted beside it plus the owner's session key material.
// Secrets are immutable after creation except for deletion.
type Secret struct {
	ID          int64
	UserID      int64
	ServiceName string
	Ciphertext  []byte
	RecordSalt  []byte
	CreatedAt   time.Time
}
