package worker_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/domain"
	"turfbook/internal/infrastructure/persistence/postgres"
	"turfbook/internal/worker"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*domain.Booking
	stale    []uuid.UUID
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error { return nil }

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, postgres.ErrBookingNotFound
}

func (f *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeBookingRepo) FindBlockingInWindow(ctx context.Context, groundIDs []uuid.UUID, windowStart, windowEnd time.Time) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) FindStaleUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Booking
	for _, id := range f.stale {
		if b, ok := f.bookings[id]; ok {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeGroundRepo struct {
	ground *domain.Ground
}

func (f *fakeGroundRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ground, error) {
	return f.ground, nil
}

func (f *fakeGroundRepo) FindByNames(ctx context.Context, names []string) ([]*domain.Ground, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakePublisher) Publish(ctx context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated int
}

func (f *fakeCache) GetDay(ctx context.Context, groundID uuid.UUID, date string) ([]int, bool) {
	return nil, false
}
func (f *fakeCache) SetDay(ctx context.Context, groundID uuid.UUID, date string, hours []int) {}
func (f *fakeCache) InvalidateDay(ctx context.Context, groundIDs []uuid.UUID, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExpirationWorker_FailsStaleBookings(t *testing.T) {
	ground := &domain.Ground{ID: uuid.New(), Name: domain.GroundOne}
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	pending := domain.NewBooking("Asha Rao", "+919876543210", "asha@example.com", ground.ID, start, 1400)
	processing := domain.NewBooking("Ravi Iyer", "+919876543211", "ravi@example.com", ground.ID, start.Add(time.Hour), 1400)
	require.NoError(t, processing.AttachOrder("order_1"))

	repo := &fakeBookingRepo{
		bookings: map[uuid.UUID]*domain.Booking{
			pending.ID:    pending,
			processing.ID: processing,
		},
		stale: []uuid.UUID{pending.ID, processing.ID},
	}
	publisher := &fakePublisher{}
	cache := &fakeCache{}

	w := worker.NewExpirationWorker(
		repo, &fakeGroundRepo{ground: ground}, fakeTxRunner{},
		publisher, cache,
		time.Minute, 15*time.Minute, 100,
		quietLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Start runs one sweep immediately; give it a moment, then stop.
	require.Eventually(t, func() bool {
		b, err := repo.FindByID(ctx, pending.ID)
		return err == nil && b.PaymentStatus == domain.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	for _, id := range []uuid.UUID{pending.ID, processing.ID} {
		b, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, b.PaymentStatus)
		require.NotNil(t, b.FailureReason)
		assert.Equal(t, domain.ReasonWindowExpired, *b.FailureReason)
		assert.Equal(t, 1, b.PaymentAttempts)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Len(t, publisher.keys, 2)
}

func TestExpirationWorker_SkipsPaidBooking(t *testing.T) {
	ground := &domain.Ground{ID: uuid.New(), Name: domain.GroundOne}
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	paid := domain.NewBooking("Asha Rao", "+919876543210", "asha@example.com", ground.ID, start, 1400)
	require.NoError(t, paid.AttachOrder("order_1"))
	require.NoError(t, paid.MarkPaid("pay_1", "sig", "upi", time.Now().UTC()))

	// Stale queries should never return PAID rows, but the worker re-checks
	// under the lock anyway in case a verify raced the sweep.
	repo := &fakeBookingRepo{
		bookings: map[uuid.UUID]*domain.Booking{paid.ID: paid},
		stale:    []uuid.UUID{paid.ID},
	}
	publisher := &fakePublisher{}

	w := worker.NewExpirationWorker(
		repo, &fakeGroundRepo{ground: ground}, fakeTxRunner{},
		publisher, &fakeCache{},
		time.Minute, 15*time.Minute, 100,
		quietLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	b, err := repo.FindByID(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, b.PaymentStatus)
	assert.Equal(t, 1, b.PaymentAttempts)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Empty(t, publisher.keys)
}
