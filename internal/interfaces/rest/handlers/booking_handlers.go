package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"turfbook/internal/application/services"
	"turfbook/internal/domain"
	"turfbook/internal/interfaces/rest"
)

type createBookingRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	GroundID      string `json:"ground_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	StartHour     int    `json:"start_hour" validate:"min=0,max=23"`
}

type verifyPaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type reportFailureRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	Reason    string `json:"reason"`
}

type bookingResponse struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customer_name"`
	GroundID        string     `json:"ground_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	TotalAmount     int64      `json:"total_amount"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentAttempts int        `json:"payment_attempts"`
	GatewayOrderID  *string    `json:"gateway_order_id,omitempty"`
	PaymentMethod   *string    `json:"payment_method,omitempty"`
	CompletedAt     *time.Time `json:"payment_completed_at,omitempty"`
	FailureReason   *string    `json:"failure_reason,omitempty"`
}

type createBookingResponse struct {
	Booking  bookingResponse `json:"booking"`
	OrderID  string          `json:"order_id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	KeyID    string          `json:"key_id"`
}

type verifyPaymentResponse struct {
	Booking    bookingResponse `json:"booking"`
	GroundName string          `json:"ground_name"`
}

type availabilityResponse struct {
	GroundID    string `json:"ground_id"`
	GroundName  string `json:"ground_name"`
	Date        string `json:"date"`
	BookedHours []int  `json:"booked_hours"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID.String(),
		CustomerName:    b.CustomerName,
		GroundID:        b.GroundID.String(),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		TotalAmount:     b.TotalAmount,
		PaymentStatus:   string(b.PaymentStatus),
		PaymentAttempts: b.PaymentAttempts,
		GatewayOrderID:  b.GatewayOrderID,
		PaymentMethod:   b.PaymentMethod,
		CompletedAt:     b.PaymentCompletedAt,
		FailureReason:   b.FailureReason,
	}
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !h.decode(w, r, &req) {
		return
	}

	groundID, err := uuid.Parse(req.GroundID)
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("ground_id must be a valid UUID"), h.logger)
		return
	}

	result, err := h.createOrderService.CreateOrder(r.Context(), services.CreateOrderCommand{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		GroundID:      groundID,
		Date:          req.Date,
		StartHour:     req.StartHour,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, createBookingResponse{
		Booking:  toBookingResponse(result.Booking),
		OrderID:  result.Order.ID,
		Amount:   result.Order.Amount,
		Currency: result.Order.Currency,
		KeyID:    result.KeyID,
	})
}

func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("booking_id must be a valid UUID"), h.logger)
		return
	}

	result, err := h.verifyService.Verify(r.Context(), services.VerifyCommand{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		BookingID: bookingID,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, verifyPaymentResponse{
		Booking:    toBookingResponse(result.Booking),
		GroundName: result.GroundName,
	})
}

func (h *Handlers) ReportFailure(w http.ResponseWriter, r *http.Request) {
	var req reportFailureRequest
	if !h.decode(w, r, &req) {
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("booking_id must be a valid UUID"), h.logger)
		return
	}

	booking, err := h.failureService.Report(r.Context(), services.FailureCommand{
		BookingID: bookingID,
		Reason:    req.Reason,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("booking id must be a valid UUID"), h.logger)
		return
	}

	if err := h.cancelService.Cancel(r.Context(), bookingID); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, map[string]string{"message": "booking cancelled"})
}

func (h *Handlers) GroundAvailability(w http.ResponseWriter, r *http.Request) {
	groundID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("ground id must be a valid UUID"), h.logger)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		rest.WriteError(w, domain.NewValidationError("date query parameter is required"), h.logger)
		return
	}

	day, err := h.availabilityService.DaySlots(r.Context(), groundID, date)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, availabilityResponse{
		GroundID:    day.GroundID.String(),
		GroundName:  day.GroundName,
		Date:        day.Date,
		BookedHours: day.BookedHours,
	})
}

// decode parses and validates a JSON request body, writing the error
// response itself on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rest.WriteError(w, domain.NewValidationError("invalid request body"), h.logger)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		rest.WriteError(w, domain.NewValidationError(err.Error()), h.logger)
		return false
	}
	return true
}
