package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vaultling/vaultling/internal/vault/domain"
	"github.com/vaultling/vaultling/internal/vault/store"
	"github.com/vaultling/vaultling/pkg/slogx"
)

// Notifier delivers one rotation notice to a user. Implementations live
// outside the core (chat transport, email, whatever); the sweep only cares
// about success or failure.
type Notifier interface {
	Deliver(ctx context.Context, userID int64, serviceName string, dueDate time.Time) error
}

// ReminderService periodically sweeps the store for due, unsent reminders and
// delivers them through the Notifier. A reminder is marked sent only after
// its delivery succeeded, so a partial sweep resumes without re-sending.
type ReminderService struct {
	Store           store.Store
	Notifier        Notifier
	Logger          *slog.Logger
	Interval        time.Duration
	DeliveryTimeout time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReminderService creates the sweep worker. Interval defaults to 24h,
// delivery timeout to 10s.
func NewReminderService(st store.Store, notifier Notifier, logger *slog.Logger, interval, deliveryTimeout time.Duration) *ReminderService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if deliveryTimeout <= 0 {
		deliveryTimeout = 10 * time.Second
	}
	return &ReminderService{
		Store:           st,
		Notifier:        notifier,
		Logger:          logger,
		Interval:        interval,
		DeliveryTimeout: deliveryTimeout,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

func (s *ReminderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *ReminderService) Start() {
	go s.run()
	s.Logger.Info("reminder sweep started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-flight sweep finishes.
func (s *ReminderService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("reminder sweep stopped")
}

func (s *ReminderService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup so a restart never delays overdue notices.
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep processes every due, unsent reminder once. Failures are isolated per
// item: one unreachable recipient or bad row never blocks the rest. The sweep
// checkpoints through MarkSent after each successful delivery and stops early
// if the service is shutting down or ctx is cancelled.
func (s *ReminderService) Sweep(ctx context.Context) {
	due, err := s.Store.Reminders().ListDue(ctx, s.now())
	if err != nil {
		s.Logger.Error("failed to list due reminders", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	s.Logger.Info("processing due reminders", "count", len(due))

	var delivered, failed int
	for _, r := range due {
		select {
		case <-s.stopCh:
			s.Logger.Info("sweep interrupted by shutdown", "delivered", delivered, "remaining", len(due)-delivered-failed)
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := s.deliverOne(ctx, r); err != nil {
			failed++
			s.Logger.Error("failed to deliver reminder",
				"reminder_id", r.ReminderID,
				"user_id", r.UserID,
				"error", err,
			)
			continue
		}
		delivered++
	}

	s.Logger.Info("reminder sweep completed", "delivered", delivered, "failed", failed)
}

// deliverOne notifies a single recipient under a short timeout, then marks
// the reminder sent. The mark retries once on a transient busy store. The
// delivery context carries a user-scoped logger so notifier implementations
// log with the owning user id.
func (s *ReminderService) deliverOne(ctx context.Context, r domain.DueReminder) error {
	dctx, cancel := context.WithTimeout(ctx, s.DeliveryTimeout)
	defer cancel()
	dctx = slogx.WithUser(slogx.WithContext(dctx, s.Logger), r.UserID)

	if err := s.Notifier.Deliver(dctx, r.UserID, r.ServiceName, r.DueDate); err != nil {
		return err
	}

	return retryBusy(func() error {
		return s.Store.Reminders().MarkSent(ctx, r.ReminderID)
	})
}
