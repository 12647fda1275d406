package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"turfbook/internal/domain"
)

var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `id, customer_name, customer_phone, customer_email, ground_id,
		       start_time, end_time, duration, total_amount,
		       payment_status, payment_attempts,
		       gateway_order_id, gateway_payment_id, gateway_signature,
		       payment_method, payment_completed_at, failure_reason,
		       created_at, updated_at`

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
		    id, customer_name, customer_phone, customer_email, ground_id,
		    start_time, end_time, duration, total_amount,
		    payment_status, payment_attempts,
		    gateway_order_id, gateway_payment_id, gateway_signature,
		    payment_method, payment_completed_at, failure_reason,
		    created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	b := toBookingModel(booking)
	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.CustomerName,
		b.CustomerPhone,
		b.CustomerEmail,
		b.GroundID,
		b.StartTime,
		b.EndTime,
		b.Duration,
		b.TotalAmount,
		b.PaymentStatus,
		b.PaymentAttempts,
		b.GatewayOrderID,
		b.GatewayPaymentID,
		b.GatewaySignature,
		b.PaymentMethod,
		b.PaymentCompletedAt,
		b.FailureReason,
		b.CreatedAt,
		b.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// FindByID retrieves a booking
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return scanBooking(row)
}

// FindByIDForUpdate retrieves a booking with a row-level lock so that
// concurrent lifecycle transitions against the same booking serialize.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var q interface {
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	} = r.db
	if tx != nil {
		q = tx
	}

	row := q.QueryRow(ctx, query, id)
	return scanBooking(row)
}

// FindBlockingInWindow returns bookings on any of the given grounds whose
// start_time falls inside [windowStart, windowEnd) and whose status counts
// toward conflict detection (PAID or PROCESSING). The window is keyed on
// start_time only; a legacy multi-hour booking that started before the
// window is intentionally not picked up.
func (r *BookingRepository) FindBlockingInWindow(ctx context.Context, groundIDs []uuid.UUID, windowStart, windowEnd time.Time) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ground_id = ANY($1)
		  AND start_time >= $2
		  AND start_time < $3
		  AND payment_status = ANY($4)
	`

	rows, err := r.db.Query(ctx, query, groundIDs, windowStart, windowEnd,
		[]string{string(domain.StatusPaid), string(domain.StatusProcessing)})
	if err != nil {
		return nil, fmt.Errorf("query blocking bookings: %w", err)
	}

	results, err := pgx.CollectRows(rows, collectBooking)
	if err != nil {
		return nil, fmt.Errorf("scan blocking bookings: %w", err)
	}
	return results, nil
}

// FindStaleUnpaid returns PENDING/PROCESSING bookings created before the
// cutoff, oldest first. Used by the expiration worker.
func (r *BookingRepository) FindStaleUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE payment_status = ANY($1)
		  AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query,
		[]string{string(domain.StatusPending), string(domain.StatusProcessing)}, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale bookings: %w", err)
	}

	results, err := pgx.CollectRows(rows, collectBooking)
	if err != nil {
		return nil, fmt.Errorf("scan stale bookings: %w", err)
	}
	return results, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET payment_status = $1, payment_attempts = $2,
		    gateway_order_id = $3, gateway_payment_id = $4, gateway_signature = $5,
		    payment_method = $6, payment_completed_at = $7, failure_reason = $8,
		    updated_at = $9
		WHERE id = $10
	`

	b := toBookingModel(booking)
	var q interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	} = r.db
	if tx != nil {
		q = tx
	}
	result, err := q.Exec(ctx, query,
		b.PaymentStatus,
		b.PaymentAttempts,
		b.GatewayOrderID,
		b.GatewayPaymentID,
		b.GatewaySignature,
		b.PaymentMethod,
		b.PaymentCompletedAt,
		b.FailureReason,
		b.UpdatedAt,
		b.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Delete hard-deletes a booking. Callers must check CanCancel first.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func collectBooking(row pgx.CollectableRow) (*domain.Booking, error) {
	var m BookingModel
	err := row.Scan(
		&m.ID, &m.CustomerName, &m.CustomerPhone, &m.CustomerEmail, &m.GroundID,
		&m.StartTime, &m.EndTime, &m.Duration, &m.TotalAmount,
		&m.PaymentStatus, &m.PaymentAttempts,
		&m.GatewayOrderID, &m.GatewayPaymentID, &m.GatewaySignature,
		&m.PaymentMethod, &m.PaymentCompletedAt, &m.FailureReason,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return toDomainBooking(m), err
}

// scanBooking converts a database row into a domain Booking.
// Returns ErrBookingNotFound if the row doesn't exist.
func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var m BookingModel
	err := row.Scan(
		&m.ID, &m.CustomerName, &m.CustomerPhone, &m.CustomerEmail, &m.GroundID,
		&m.StartTime, &m.EndTime, &m.Duration, &m.TotalAmount,
		&m.PaymentStatus, &m.PaymentAttempts,
		&m.GatewayOrderID, &m.GatewayPaymentID, &m.GatewaySignature,
		&m.PaymentMethod, &m.PaymentCompletedAt, &m.FailureReason,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return toDomainBooking(m), nil
}
