package postgres

import (
	"turfbook/internal/domain"
)

// toDomainBooking: maps db model to domain entity
func toDomainBooking(m BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                 m.ID,
		CustomerName:       m.CustomerName,
		CustomerPhone:      m.CustomerPhone,
		CustomerEmail:      m.CustomerEmail,
		GroundID:           m.GroundID,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		Duration:           m.Duration,
		TotalAmount:        m.TotalAmount,
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		PaymentAttempts:    m.PaymentAttempts,
		GatewayOrderID:     m.GatewayOrderID,
		GatewayPaymentID:   m.GatewayPaymentID,
		GatewaySignature:   m.GatewaySignature,
		PaymentMethod:      m.PaymentMethod,
		PaymentCompletedAt: m.PaymentCompletedAt,
		FailureReason:      m.FailureReason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// toBookingModel: maps domain entity to db model
func toBookingModel(b *domain.Booking) *BookingModel {
	return &BookingModel{
		ID:                 b.ID,
		CustomerName:       b.CustomerName,
		CustomerPhone:      b.CustomerPhone,
		CustomerEmail:      b.CustomerEmail,
		GroundID:           b.GroundID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Duration:           b.Duration,
		TotalAmount:        b.TotalAmount,
		PaymentStatus:      string(b.PaymentStatus),
		PaymentAttempts:    b.PaymentAttempts,
		GatewayOrderID:     b.GatewayOrderID,
		GatewayPaymentID:   b.GatewayPaymentID,
		GatewaySignature:   b.GatewaySignature,
		PaymentMethod:      b.PaymentMethod,
		PaymentCompletedAt: b.PaymentCompletedAt,
		FailureReason:      b.FailureReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toDomainGround(m GroundModel) *domain.Ground {
	return &domain.Ground{
		ID:        m.ID,
		Name:      m.Name,
		Pricing:   domain.PricingTable(m.Pricing),
		CreatedAt: m.CreatedAt,
	}
}
