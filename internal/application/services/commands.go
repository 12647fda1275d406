package services

import (
	"github.com/google/uuid"

	"turfbook/internal/domain"
	"turfbook/internal/infrastructure/gateway"
)

type CreateOrderCommand struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	GroundID      uuid.UUID
	Date          string // YYYY-MM-DD
	StartHour     int    // 0-23
}

// CreateOrderResult carries what the client needs to open checkout: the
// booking, the gateway order descriptor and the gateway's public key id.
type CreateOrderResult struct {
	Booking *domain.Booking
	Order   *gateway.OrderResponse
	KeyID   string
}

type VerifyCommand struct {
	OrderID   string
	PaymentID string
	Signature string
	BookingID uuid.UUID
}

type VerifyResult struct {
	Booking    *domain.Booking
	GroundName string
}

type FailureCommand struct {
	BookingID uuid.UUID
	Reason    string
}

// DayAvailability is the per-hour booked map for one ground on one date.
type DayAvailability struct {
	GroundID    uuid.UUID
	GroundName  string
	Date        string
	BookedHours []int
}
