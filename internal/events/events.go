// Package events publishes booking lifecycle events for downstream
// consumers (notifications, audit). Publishing is best-effort: a broker
// outage never fails the request that produced the event.
package events

// Routing keys for the booking topic exchange.
const (
	RKBookingCreated   = "booking.created"
	RKBookingPaid      = "booking.paid"
	RKBookingFailed    = "booking.failed"
	RKBookingCancelled = "booking.cancelled"
)

type BookingCreated struct {
	BookingID string `json:"booking_id"`
	GroundID  string `json:"ground_id"`
	Start     int64  `json:"start"` // unix seconds
	Amount    int64  `json:"amount"`
}

type BookingPaid struct {
	BookingID string `json:"booking_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method,omitempty"`
}

type BookingFailed struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"`
	Attempts  int    `json:"attempts"`
}

type BookingCancelled struct {
	BookingID string `json:"booking_id"`
}
