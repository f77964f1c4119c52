package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session holds the scratch state of one user's in-progress generate flow:
// the service name they typed and the candidate password they are deciding
// on. It never holds key material. Sessions expire after a fixed TTL.
type Session struct {
	ID          string // ULID
	UserID      int64
	ServiceName string
	Candidate   string
	ExpiresAt   time.Time
}

// SessionStore keeps at most one active session per user, with explicit
// expiry and a background pruning worker. It replaces ambient per-user
// global state; callers receive it as a dependency.
type SessionStore struct {
	TTL    time.Duration
	Logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSessionStore creates a session store. If ttl is 0 or negative it
// defaults to 5 minutes.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		TTL:      ttl,
		Logger:   logger,
		sessions: make(map[int64]*Session),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Begin starts a fresh session for the user, replacing any existing one.
func (s *SessionStore) Begin(userID int64) *Session {
	sess := &Session{
		ID:        ulid.Make().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.TTL),
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the user's live session, or false if none exists or it expired.
// Expired sessions are removed on access.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, userID)
		return nil, false
	}
	return sess, true
}

// Update stores flow state on the user's session and refreshes its expiry.
// Returns false when no live session exists.
func (s *SessionStore) Update(userID int64, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, userID)
		return false
	}
	fn(sess)
	sess.ExpiresAt = time.Now().Add(s.TTL)
	return true
}

// End discards the user's session, if any.
func (s *SessionStore) End(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// StartPruning launches the background worker that evicts expired sessions.
// Call Stop to shut it down.
func (s *SessionStore) StartPruning(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go s.run(interval)
	s.Logger.Info("session pruning started", "interval", interval, "ttl", s.TTL)
}

// Stop shuts down the pruning worker, blocking until it exits.
func (s *SessionStore) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("session pruning stopped")
}

func (s *SessionStore) run(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				s.Logger.Debug("pruned expired sessions", "count", n)
			}
		case <-s.stopCh:
			return
		}
	}
}

// Prune removes every expired session and returns how many were dropped.
func (s *SessionStore) Prune() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int
	for userID, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, userID)
			pruned++
		}
	}
	return pruned
}
