package domain

import "time"

// User is a vault owner. The id comes from the host messaging platform and is
// opaque to the vault. Salt is generated once at enrolment and never changes;
// the raw master password is never stored.
type User struct {
	ID                 int64
	MasterPasswordHash string // hex-encoded PBKDF2 verifier
	Salt               []byte
	CreatedAt          time.Time
}
