// Package application holds the ports the booking services depend on.
// Implementations live under internal/infrastructure and internal/events.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"turfbook/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error)
	FindBlockingInWindow(ctx context.Context, groundIDs []uuid.UUID, windowStart, windowEnd time.Time) ([]*domain.Booking, error)
	FindStaleUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
	Update(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GroundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Ground, error)
	FindByNames(ctx context.Context, names []string) ([]*domain.Ground, error)
}

// TxRunner runs a function inside a database transaction. A nil tx passed to
// repository methods falls back to the pool, so mocks may invoke fn(nil).
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// EventPublisher emits booking lifecycle events. Best-effort; errors are
// logged by callers, never returned to clients.
type EventPublisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// AvailabilityCache caches per-ground, per-date booked-hour lists.
type AvailabilityCache interface {
	GetDay(ctx context.Context, groundID uuid.UUID, date string) ([]int, bool)
	SetDay(ctx context.Context, groundID uuid.UUID, date string, bookedHours []int)
	InvalidateDay(ctx context.Context, groundIDs []uuid.UUID, date string)
}
