package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"turfbook/internal/application"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// PaymentFailureService handles failure reports from the client: the user
// abandoned checkout or the gateway reported a failure client-side.
type PaymentFailureService struct {
	bookings  application.BookingRepository
	grounds   application.GroundRepository
	conflicts *ConflictChecker
	db        application.TxRunner
	publisher application.EventPublisher
	cache     application.AvailabilityCache
	logger    *slog.Logger
}

func NewPaymentFailureService(
	bookings application.BookingRepository,
	grounds application.GroundRepository,
	conflicts *ConflictChecker,
	db application.TxRunner,
	publisher application.EventPublisher,
	cache application.AvailabilityCache,
	logger *slog.Logger,
) *PaymentFailureService {
	return &PaymentFailureService{
		bookings:  bookings,
		grounds:   grounds,
		conflicts: conflicts,
		db:        db,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

func (s *PaymentFailureService) Report(ctx context.Context, cmd FailureCommand) (*domain.Booking, error) {
	reason := cmd.Reason
	if reason == "" {
		reason = domain.ReasonUserFailure
	}

	var booking *domain.Booking
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdate(ctx, tx, cmd.BookingID)
		if err != nil {
			return err
		}
		if err := b.MarkFailed(reason); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, tx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		if errors.Is(err, postgres.ErrBookingNotFound) {
			return nil, domain.NewBookingNotFoundError(cmd.BookingID.String())
		}
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError(err)
	}

	s.releaseSlot(ctx, booking)

	if err := s.publisher.Publish(ctx, events.RKBookingFailed, events.BookingFailed{
		BookingID: booking.ID.String(),
		Reason:    reason,
		Attempts:  booking.PaymentAttempts,
	}); err != nil {
		s.logger.Warn("failed to publish booking.failed", "booking_id", booking.ID, "error", err)
	}

	s.logger.Info("payment failure reported",
		"booking_id", booking.ID,
		"reason", reason,
		"attempts", booking.PaymentAttempts,
	)

	return booking, nil
}

func (s *PaymentFailureService) releaseSlot(ctx context.Context, booking *domain.Booking) {
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
