package domain

import "fmt"

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeGroundNotFound     = "GROUND_NOT_FOUND"
	ErrCodeBookingNotFound    = "BOOKING_NOT_FOUND"
	ErrCodeSlotConflict       = "SLOT_CONFLICT"
	ErrCodeSlotInPast         = "SLOT_IN_PAST"
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"
	ErrCodePaymentNotCaptured = "PAYMENT_NOT_CAPTURED"
	ErrCodeGatewayFailure     = "GATEWAY_FAILURE"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeCancelPaid         = "CANCEL_PAID_BOOKING"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

func NewGroundNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeGroundNotFound,
		Message: fmt.Sprintf("ground %s not found", id),
	}
}

func NewBookingNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBookingNotFound,
		Message: fmt.Sprintf("booking %s not found", id),
	}
}

func NewSlotConflictError(hour int, date string) *DomainError {
	return &DomainError{
		Code:    ErrCodeSlotConflict,
		Message: fmt.Sprintf("slot %02d:00 on %s is already booked", hour, date),
	}
}

func NewSlotInPastError() *DomainError {
	return &DomainError{
		Code:    ErrCodeSlotInPast,
		Message: "slot must start at least 30 minutes from now",
	}
}

func NewInvalidSignatureError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: ReasonInvalidSignature,
	}
}

func NewPaymentNotCapturedError(status string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotCaptured,
		Message: fmt.Sprintf("Payment status: %s", status),
	}
}

func NewOrderCreationError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayFailure,
		Message: "could not create payment order",
		Err:     err,
	}
}

func NewGatewayFailureError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayFailure,
		Message: ReasonFetchFailed,
		Err:     err,
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewCancelPaidError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCancelPaid,
		Message: fmt.Sprintf("booking %s is paid and cannot be cancelled", id),
	}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "an internal error occurred",
		Err:     err,
	}
}
