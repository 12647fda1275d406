package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"turfbook/internal/domain"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data})
}

// WriteError maps domain errors to HTTP responses. Unknown errors are
// reported as opaque internal errors so wrapped causes never leak.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	code := domain.ErrCodeInternal
	message := "an internal error occurred"

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	statusCode := toHTTPStatus(code)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func toHTTPStatus(code string) int {
	switch code {
	case domain.ErrCodeValidation,
		domain.ErrCodeSlotConflict,
		domain.ErrCodeSlotInPast,
		domain.ErrCodeInvalidSignature,
		domain.ErrCodePaymentNotCaptured,
		domain.ErrCodeInvalidTransition,
		domain.ErrCodeCancelPaid:
		return http.StatusBadRequest
	case domain.ErrCodeGroundNotFound, domain.ErrCodeBookingNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
