package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"turfbook/internal/application"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/infrastructure/gateway"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// VerifyService drives a PROCESSING booking to PAID or FAILED.
//
// Two independent checks guard the PAID transition, in order: the local
// signature check (cheap, defeats tampered identifiers without a remote
// call) and the gateway's authoritative payment lookup (the signature alone
// only proves the id pair was signed, not that money moved). Both are
// mandatory.
type VerifyService struct {
	bookings  application.BookingRepository
	grounds   application.GroundRepository
	conflicts *ConflictChecker
	db        application.TxRunner
	gateway   gateway.Client
	secret    string
	publisher application.EventPublisher
	cache     application.AvailabilityCache
	logger    *slog.Logger
	now       func() time.Time
}

func NewVerifyService(
	bookings application.BookingRepository,
	grounds application.GroundRepository,
	conflicts *ConflictChecker,
	db application.TxRunner,
	gatewayClient gateway.Client,
	gatewaySecret string,
	publisher application.EventPublisher,
	cache application.AvailabilityCache,
	logger *slog.Logger,
) *VerifyService {
	return &VerifyService{
		bookings:  bookings,
		grounds:   grounds,
		conflicts: conflicts,
		db:        db,
		gateway:   gatewayClient,
		secret:    gatewaySecret,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *VerifyService) Verify(ctx context.Context, cmd VerifyCommand) (*VerifyResult, error) {
	if cmd.OrderID == "" || cmd.PaymentID == "" || cmd.Signature == "" || cmd.BookingID == uuid.Nil {
		return nil, domain.NewValidationError("order id, payment id, signature and booking id are required")
	}

	booking, err := s.bookings.FindByID(ctx, cmd.BookingID)
	if err != nil {
		if errors.Is(err, postgres.ErrBookingNotFound) {
			return nil, domain.NewBookingNotFoundError(cmd.BookingID.String())
		}
		return nil, domain.NewInternalError(err)
	}

	if !gateway.VerifySignature(cmd.OrderID, cmd.PaymentID, cmd.Signature, s.secret) {
		s.recordFailure(ctx, booking.ID, domain.ReasonInvalidSignature, nil)
		return nil, domain.NewInvalidSignatureError()
	}

	payment, err := s.gateway.FetchPayment(ctx, cmd.PaymentID)
	if err != nil {
		s.recordFailure(ctx, booking.ID, domain.ReasonFetchFailed, nil)
		return nil, domain.NewGatewayFailureError(err)
	}

	if !payment.IsSuccessful() {
		reason := domain.NewPaymentNotCapturedError(payment.Status)
		// The payment id and signature are kept for audit even though the
		// payment did not go through.
		s.recordFailure(ctx, booking.ID, reason.Message, &gatewayRefs{
			paymentID: cmd.PaymentID,
			signature: cmd.Signature,
		})
		return nil, reason
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdate(ctx, tx, cmd.BookingID)
		if err != nil {
			return err
		}
		if err := b.MarkPaid(cmd.PaymentID, cmd.Signature, payment.Method, s.now().UTC()); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, tx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError(err)
	}

	groundName := s.afterPaid(ctx, booking, payment)

	s.logger.Info("booking paid",
		"booking_id", booking.ID,
		"payment_id", cmd.PaymentID,
		"method", payment.Method,
		"attempts", booking.PaymentAttempts,
	)

	return &VerifyResult{Booking: booking, GroundName: groundName}, nil
}

type gatewayRefs struct {
	paymentID string
	signature string
}

// recordFailure applies the FAILED transition under a row lock. It is
// deliberately best-effort: the caller's verification error is what the
// client must see, so problems here are logged, not returned.
func (s *VerifyService) recordFailure(ctx context.Context, bookingID uuid.UUID, reason string, refs *gatewayRefs) {
	var booking *domain.Booking
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if refs != nil {
			b.RecordGatewayRefs(refs.paymentID, refs.signature)
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
		s.logger.Error("failed to record payment failure",
			"booking_id", bookingID,
			"reason", reason,
			"error", err,
		)
		return
	}

	// A FAILED booking no longer blocks its slot.
	s.releaseSlot(ctx, booking)

	if err := s.publisher.Publish(ctx, events.RKBookingFailed, events.BookingFailed{
		BookingID: booking.ID.String(),
		Reason:    reason,
		Attempts:  booking.PaymentAttempts,
	}); err != nil {
		s.logger.Warn("failed to publish booking.failed", "booking_id", booking.ID, "error", err)
	}
}

func (s *VerifyService) afterPaid(ctx context.Context, booking *domain.Booking, payment *gateway.PaymentResponse) string {
	var groundName string
	if ground, err := s.grounds.FindByID(ctx, booking.GroundID); err == nil {
		groundName = ground.Name
		if ids, err := s.conflicts.RelevantGroundIDs(ctx, ground); err == nil {
			s.cache.InvalidateDay(ctx, ids, dateKey(booking.StartTime))
		}
	} else {
		s.logger.Warn("could not load ground after payment", "booking_id", booking.ID, "error", err)
	}

	if err := s.publisher.Publish(ctx, events.RKBookingPaid, events.BookingPaid{
		BookingID: booking.ID.String(),
		PaymentID: payment.ID,
		Amount:    booking.TotalAmount,
		Method:    payment.Method,
	}); err != nil {
		s.logger.Warn("failed to publish booking.paid", "booking_id", booking.ID, "error", err)
	}

	return groundName
}

func (s *VerifyService) releaseSlot(ctx context.Context, booking *domain.Booking) {
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
