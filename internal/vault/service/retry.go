package service

import (
	"strings"
	"time"
)

// retryBusy runs fn and retries it exactly once if sqlite reports a transient
// busy/locked condition. Anything else surfaces immediately.
func retryBusy(fn func() error) error {
	err := fn()
	if err == nil || !isBusy(err) {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return fn()
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}
