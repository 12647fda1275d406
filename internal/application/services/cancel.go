package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"turfbook/internal/application"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// CancelService hard-deletes a booking. PAID bookings are rejected without
// mutation; there is no refund path.
type CancelService struct {
	bookings  application.BookingRepository
	grounds   application.GroundRepository
	conflicts *ConflictChecker
	publisher application.EventPublisher
	cache     application.AvailabilityCache
	logger    *slog.Logger
}

func NewCancelService(
	bookings application.BookingRepository,
	grounds application.GroundRepository,
	conflicts *ConflictChecker,
	publisher application.EventPublisher,
	cache application.AvailabilityCache,
	logger *slog.Logger,
) *CancelService {
	return &CancelService{
		bookings:  bookings,
		grounds:   grounds,
		conflicts: conflicts,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

func (s *CancelService) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, postgres.ErrBookingNotFound) {
			return domain.NewBookingNotFoundError(bookingID.String())
		}
		return domain.NewInternalError(err)
	}

	if err := booking.CanCancel(); err != nil {
		return err
	}

	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, postgres.ErrBookingNotFound) {
			return domain.NewBookingNotFoundError(bookingID.String())
		}
		return domain.NewInternalError(err)
	}

	s.releaseSlot(ctx, booking)

	if err := s.publisher.Publish(ctx, events.RKBookingCancelled, events.BookingCancelled{
		BookingID: booking.ID.String(),
	}); err != nil {
		s.logger.Warn("failed to publish booking.cancelled", "booking_id", booking.ID, "error", err)
	}

	s.logger.Info("booking cancelled", "booking_id", booking.ID, "status", booking.PaymentStatus)

	return nil
}

func (s *CancelService) releaseSlot(ctx context.Context, booking *domain.Booking) {
	ground, err := s.grounds.FindByID(ctx, booking.GroundID)
	if err != nil {
		s.logger.Warn("could not load ground for cache invalidation", "booking_id", booking.ID, "error", err)
		return
	}
	ids, err := s.conflicts.RelevantGroundIDs(ctx, ground)
	if err != nil {
		s.logger.Warn("could not resolve grounds for cache invalidation", "error", err)
		return
	}
	s.cache.InvalidateDay(ctx, ids, dateKey(booking.StartTime))
}
