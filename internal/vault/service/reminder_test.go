package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vaultling/vaultling/internal/vault/domain"
	"github.com/vaultling/vaultling/internal/vault/service"
	"github.com/vaultling/vaultling/internal/vault/store/drivers/sqlite"
	"github.com/vaultling/vaultling/pkg/slogx"

	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu        sync.Mutex
	delivered []string       // service names in delivery order
	failFor   map[string]error
	block     bool // when set, Deliver waits for ctx cancellation
}

func (n *fakeNotifier) Deliver(ctx context.Context, userID int64, serviceName string, dueDate time.Time) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failFor[serviceName]; ok {
		return err
	}
	n.delivered = append(n.delivered, serviceName)
	return nil
}

func (n *fakeNotifier) deliveredNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.delivered...)
}

func newReminderFixture(t *testing.T) (*sqlite.Store, time.Time) {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()
	day := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, st.Users().Create(ctx, domain.User{
		ID:                 42,
		MasterPasswordHash: "00",
		Salt:               []byte("0123456789abcdef"),
		CreatedAt:          day,
	}))

	for _, name := range []string{"mail", "bank"} {
		id, err := st.Secrets().Create(ctx, domain.Secret{
			UserID:      42,
			ServiceName: name,
			Ciphertext:  []byte{0x01},
			RecordSalt:  []byte("record-salt-0000"),
			CreatedAt:   day,
		})
		require.NoError(t, err)
		_, err = st.Reminders().Create(ctx, domain.Reminder{UserID: 42, SecretID: id, DueDate: day})
		require.NoError(t, err)
	}

	return st, day
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSweepDeliversAndMarksSent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, day := newReminderFixture(t)

	notifier := &fakeNotifier{}
	sweep := service.NewReminderService(st, notifier, discardLogger(), time.Hour, time.Second)
	sweep.Now = func() time.Time { return day }

	sweep.Sweep(ctx)
	require.ElementsMatch(t, []string{"mail", "bank"}, notifier.deliveredNames())

	due, err := st.Reminders().ListDue(ctx, day)
	require.NoError(t, err)
	require.Empty(t, due, "delivered reminders must be marked sent")

	// A second sweep finds nothing and re-sends nothing.
	sweep.Sweep(ctx)
	require.Len(t, notifier.deliveredNames(), 2)
}

func TestSweepIsolatesPerItemFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, day := newReminderFixture(t)

	notifier := &fakeNotifier{failFor: map[string]error{"bank": errors.New("recipient unreachable")}}
	sweep := service.NewReminderService(st, notifier, discardLogger(), time.Hour, time.Second)
	sweep.Now = func() time.Time { return day }

	sweep.Sweep(ctx)
	require.Equal(t, []string{"mail"}, notifier.deliveredNames())

	// The failed reminder stays outstanding for the next run.
	due, err := st.Reminders().ListDue(ctx, day)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "bank", due[0].ServiceName)

	// Once the recipient is reachable again, only the failed one goes out.
	notifier.mu.Lock()
	notifier.failFor = nil
	notifier.mu.Unlock()

	sweep.Sweep(ctx)
	require.Equal(t, []string{"mail", "bank"}, notifier.deliveredNames())
}

func TestSweepAppliesPerItemTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, day := newReminderFixture(t)

	notifier := &fakeNotifier{block: true}
	sweep := service.NewReminderService(st, notifier, discardLogger(), time.Hour, 20*time.Millisecond)
	sweep.Now = func() time.Time { return day }

	start := time.Now()
	sweep.Sweep(ctx)
	require.Less(t, time.Since(start), 2*time.Second, "one stuck recipient must not stall the sweep")

	// Nothing was delivered, so nothing was marked sent.
	due, err := st.Reminders().ListDue(ctx, day)
	require.NoError(t, err)
	require.Len(t, due, 2)
}

// loggingNotifier delivers by logging through the context's scoped logger,
// the way the daemon's default notifier does.
type loggingNotifier struct{}

func (loggingNotifier) Deliver(ctx context.Context, userID int64, serviceName string, dueDate time.Time) error {
	slogx.FromContext(ctx).Info("rotation reminder due", "service_name", serviceName)
	return nil
}

func TestSweepScopesDeliveryLoggerToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, day := newReminderFixture(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sweep := service.NewReminderService(st, loggingNotifier{}, logger, time.Hour, time.Second)
	sweep.Now = func() time.Time { return day }

	sweep.Sweep(ctx)

	out := buf.String()
	require.Contains(t, out, "user_id=42")
	require.Contains(t, out, "rotation reminder due")
}

func TestReminderServiceStartStop(t *testing.T) {
	t.Parallel()
	st, day := newReminderFixture(t)

	notifier := &fakeNotifier{}
	sweep := service.NewReminderService(st, notifier, discardLogger(), time.Hour, time.Second)
	sweep.Now = func() time.Time { return day }

	sweep.Start()

	// The startup sweep runs immediately; wait for it to land.
	require.Eventually(t, func() bool {
		return len(notifier.deliveredNames()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	sweep.Stop()
}
