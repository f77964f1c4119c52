package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaultling/vaultling/internal/vault/service"
	"github.com/vaultling/vaultling/internal/vault/store"
	"github.com/vaultling/vaultling/internal/vault/store/drivers/sqlite"
	"github.com/vaultling/vaultling/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the vault daemon: store, vault service, session store,
// and the reminder sweep. Conversational front-ends attach through the
// exported services; the daemon itself only runs the background workers.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	Vault     *service.VaultService
	Sessions  *service.SessionStore
	Reminders *service.ReminderService
}

// New creates an Application with all dependencies initialized. The notifier
// is the external delivery transport; pass nil to log notices instead of
// delivering them (useful for development).
func New(cfg Config, notifier service.Notifier) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vault",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if notifier == nil {
		notifier = &logNotifier{}
	}
	app.initServices(notifier)

	return app, nil
}

// Run starts the background workers and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.Sessions.StartPruning(app.cfg.SessionPruneInterval)
	app.Reminders.Start()

	app.logger.Info("vault daemon started", "version", BuildVersion, "database", app.cfg.DatabaseFile)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig)

	return app.Shutdown()
}

// Shutdown stops the workers and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down vault daemon...")

	done := make(chan struct{})
	go func() {
		app.Reminders.Stop()
		app.Sessions.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(app.cfg.ShutdownGracePeriod):
		app.logger.Warn("workers did not stop within grace period")
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("vault daemon stopped")
	return nil
}

// initDatabase opens the sqlite store and applies migrations.
func (app *Application) initDatabase() error {
	// modernc.org/sqlite takes pragmas in _pragma=name(value) form.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices(notifier service.Notifier) {
	app.Vault = &service.VaultService{
		Store:    app.db,
		Attempts: service.NewAttemptLimiter(app.cfg.AuthAttempts, app.cfg.AuthWindow),
	}

	app.Sessions = service.NewSessionStore(app.cfg.SessionTTL, app.logger)

	app.Reminders = service.NewReminderService(
		app.db,
		notifier,
		app.logger,
		app.cfg.SweepInterval,
		app.cfg.DeliveryTimeout,
	)
}

// logNotifier records rotation notices instead of delivering them. Stands in
// for the real transport during development. The sweep attaches a user-scoped
// logger to the delivery context, so the notice already carries the user id.
type logNotifier struct{}

func (n *logNotifier) Deliver(ctx context.Context, userID int64, serviceName string, dueDate time.Time) error {
	slogx.FromContext(ctx).Info("rotation reminder due",
		"service_name", serviceName,
		"due_date", dueDate.Format(time.DateOnly),
	)
	return nil
}
