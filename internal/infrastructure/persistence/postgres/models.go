package postgres

import (
	"time"

	"github.com/google/uuid"
)

// BookingModel mirrors the bookings table row shape.
type BookingModel struct {
	ID                 uuid.UUID
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      string
	GroundID           uuid.UUID
	StartTime          time.Time
	EndTime            time.Time
	Duration           int
	TotalAmount        int64
	PaymentStatus      string
	PaymentAttempts    int
	GatewayOrderID     *string
	GatewayPaymentID   *string
	GatewaySignature   *string
	PaymentMethod      *string
	PaymentCompletedAt *time.Time
	FailureReason      *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GroundModel mirrors the grounds table row shape. Pricing is a jsonb column.
type GroundModel struct {
	ID        uuid.UUID
	Name      string
	Pricing   map[string]int64
	CreatedAt time.Time
}
