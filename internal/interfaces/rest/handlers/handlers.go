// Package handlers wires the HTTP surface to the booking services.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"turfbook/internal/application/services"
)

type Handlers struct {
	createOrderService  *services.CreateOrderService
	verifyService       *services.VerifyService
	failureService      *services.PaymentFailureService
	cancelService       *services.CancelService
	availabilityService *services.AvailabilityService
	validate            *validator.Validate
	logger              *slog.Logger
}

func NewHandlers(
	createOrderService *services.CreateOrderService,
	verifyService *services.VerifyService,
	failureService *services.PaymentFailureService,
	cancelService *services.CancelService,
	availabilityService *services.AvailabilityService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		createOrderService:  createOrderService,
		verifyService:       verifyService,
		failureService:      failureService,
		cancelService:       cancelService,
		availabilityService: availabilityService,
		validate:            validator.New(),
		logger:              logger,
	}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /bookings", h.CreateBooking)
	mux.HandleFunc("POST /bookings/verify", h.VerifyPayment)
	mux.HandleFunc("POST /bookings/failure", h.ReportFailure)
	mux.HandleFunc("DELETE /bookings/{id}", h.CancelBooking)
	mux.HandleFunc("GET /grounds/{id}/availability", h.GroundAvailability)
	mux.HandleFunc("GET /health", h.Health)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
