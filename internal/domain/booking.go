// Package domain defines the domain models for the booking service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the current state of a booking's payment lifecycle
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusPaid       PaymentStatus = "PAID"
	StatusFailed     PaymentStatus = "FAILED"
)

// Failure reasons recorded on transitions into FAILED.
const (
	ReasonInvalidSignature = "Invalid payment signature"
	ReasonFetchFailed      = "Could not fetch payment details"
	ReasonUserFailure      = "Payment failed by user"
	ReasonWindowExpired    = "Payment window expired"
)

// Booking represents a one-hour reservation of a ground.
//
// Duration is always 1 for new bookings. Legacy rows may hold a larger
// value and must still be read correctly; see OccupiedHours.
type Booking struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	GroundID      uuid.UUID

	StartTime   time.Time
	EndTime     time.Time
	Duration    int
	TotalAmount int64

	PaymentStatus      PaymentStatus
	PaymentAttempts    int
	GatewayOrderID     *string
	GatewayPaymentID   *string
	GatewaySignature   *string
	PaymentMethod      *string
	PaymentCompletedAt *time.Time
	FailureReason      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking creates a PENDING booking for a single one-hour slot.
// TotalAmount is fixed here and never recalculated.
func NewBooking(customerName, phone, email string, groundID uuid.UUID, slotStart time.Time, amount int64) *Booking {
	now := time.Now().UTC()
	return &Booking{
		ID:              uuid.New(),
		CustomerName:    customerName,
		CustomerPhone:   phone,
		CustomerEmail:   email,
		GroundID:        groundID,
		StartTime:       slotStart,
		EndTime:         slotStart.Add(time.Hour),
		Duration:        1,
		TotalAmount:     amount,
		PaymentStatus:   StatusPending,
		PaymentAttempts: 0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanTransitionTo validates whether the booking can move from its current
// payment status to the target status. It returns nil if the transition is
// allowed, otherwise an error describing why it is invalid.
//
// Valid transitions are:
//   - Pending → Processing, Failed
//   - Processing → Paid, Failed
//   - Failed → Failed (repeat failure events keep the state and bump the attempt counter)
//
// PAID is terminal.
func (b *Booking) CanTransitionTo(target PaymentStatus) error {
	switch b.PaymentStatus {
	case StatusPaid:
		return NewInvalidTransitionError(b.PaymentStatus, target)

	case StatusPending:
		if target == StatusProcessing || target == StatusFailed {
			return nil
		}

	case StatusProcessing:
		if target == StatusPaid || target == StatusFailed {
			return nil
		}

	case StatusFailed:
		if target == StatusFailed {
			return nil
		}
	}
	return NewInvalidTransitionError(b.PaymentStatus, target)
}

// AttachOrder moves the booking to PROCESSING once a gateway order exists.
func (b *Booking) AttachOrder(orderID string) error {
	if err := b.CanTransitionTo(StatusProcessing); err != nil {
		return err
	}
	b.PaymentStatus = StatusProcessing
	b.GatewayOrderID = &orderID
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPaid commits a verified payment. Only a PROCESSING booking can be paid.
func (b *Booking) MarkPaid(paymentID, signature, method string, completedAt time.Time) error {
	if err := b.CanTransitionTo(StatusPaid); err != nil {
		return err
	}
	b.PaymentStatus = StatusPaid
	b.PaymentAttempts++
	b.GatewayPaymentID = &paymentID
	b.GatewaySignature = &signature
	b.PaymentMethod = &method
	b.PaymentCompletedAt = &completedAt
	b.FailureReason = nil
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed records a failed payment event with a human-readable reason.
// Every transition into FAILED increments the attempt counter, including
// repeat failures on an already-FAILED booking.
func (b *Booking) MarkFailed(reason string) error {
	if err := b.CanTransitionTo(StatusFailed); err != nil {
		return err
	}
	b.PaymentStatus = StatusFailed
	b.PaymentAttempts++
	b.FailureReason = &reason
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordGatewayRefs stores the gateway payment id and signature without a
// state change. Kept even on unsuccessful verifications for audit.
func (b *Booking) RecordGatewayRefs(paymentID, signature string) {
	b.GatewayPaymentID = &paymentID
	b.GatewaySignature = &signature
	b.UpdatedAt = time.Now().UTC()
}

// CanCancel reports whether the booking may be hard-deleted.
// PAID bookings are never cancellable.
func (b *Booking) CanCancel() error {
	if b.PaymentStatus == StatusPaid {
		return NewCancelPaidError(b.ID.String())
	}
	return nil
}

// BlocksSlot reports whether the booking counts toward conflict detection.
func (b *Booking) BlocksSlot() bool {
	return b.PaymentStatus == StatusPaid || b.PaymentStatus == StatusProcessing
}

// OccupiedHours returns the set of hours-of-day covered by the booking:
// {(startHour + i) mod 24 : i in [0, duration)}. The modulo keeps legacy
// multi-hour rows that wrap past midnight readable.
func (b *Booking) OccupiedHours() map[int]struct{} {
	duration := b.Duration
	if duration < 1 {
		duration = 1
	}
	hours := make(map[int]struct{}, duration)
	start := b.StartTime.Hour()
	for i := 0; i < duration; i++ {
		hours[(start+i)%24] = struct{}{}
	}
	return hours
}

// Occupies reports whether the booking covers the given hour of day.
func (b *Booking) Occupies(hour int) bool {
	_, ok := b.OccupiedHours()[hour]
	return ok
}
