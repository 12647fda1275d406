// Package worker holds background loops that run alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"turfbook/internal/application"
	"turfbook/internal/domain"
	"turfbook/internal/events"
)

// ExpirationWorker sweeps bookings that sat in PENDING or PROCESSING longer
// than the payment window and marks them FAILED so their slots free up.
type ExpirationWorker struct {
	bookings      application.BookingRepository
	grounds       application.GroundRepository
	db            application.TxRunner
	publisher     application.EventPublisher
	cache         application.AvailabilityCache
	interval      time.Duration
	paymentWindow time.Duration
	batchSize     int
	logger        *slog.Logger
}

func NewExpirationWorker(
	bookings application.BookingRepository,
	grounds application.GroundRepository,
	db application.TxRunner,
	publisher application.EventPublisher,
	cache application.AvailabilityCache,
	interval time.Duration,
	paymentWindow time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		bookings:      bookings,
		grounds:       grounds,
		db:            db,
		publisher:     publisher,
		cache:         cache,
		interval:      interval,
		paymentWindow: paymentWindow,
		batchSize:     batchSize,
		logger:        logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started",
		"interval", w.interval,
		"payment_window", w.paymentWindow,
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.processExpirations(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.processExpirations(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

func (w *ExpirationWorker) processExpirations(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-w.paymentWindow)

	stale, err := w.bookings.FindStaleUnpaid(ctx, cutoff, w.batchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	var expired int
	for _, booking := range stale {
		if err := w.expire(ctx, booking.ID); err != nil {
			w.logger.Error("failed to expire booking",
				"booking_id", booking.ID,
				"error", err)
			continue
		}
		w.invalidateSlot(ctx, booking)
		expired++
	}

	w.logger.Info("processed expiration sweep",
		"candidates", len(stale),
		"expired", expired,
	)

	return nil
}

// expire re-reads the booking under a row lock before failing it: a verify
// call may have raced the sweep and completed the payment.
func (w *ExpirationWorker) expire(ctx context.Context, bookingID uuid.UUID) error {
	var publishFailed *domain.Booking
	err := w.db.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := w.bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus == domain.StatusPaid {
			return nil
		}
		if err := b.MarkFailed(domain.ReasonWindowExpired); err != nil {
			return err
		}
		if err := w.bookings.Update(ctx, tx, b); err != nil {
			return err
		}
		publishFailed = b
		return nil
	})
	if err != nil {
		return err
	}

	if publishFailed != nil {
		if err := w.publisher.Publish(ctx, events.RKBookingFailed, events.BookingFailed{
			BookingID: publishFailed.ID.String(),
			Reason:    domain.ReasonWindowExpired,
			Attempts:  publishFailed.PaymentAttempts,
		}); err != nil {
			w.logger.Warn("failed to publish booking.failed", "booking_id", publishFailed.ID, "error", err)
		}
	}

	return nil
}

func (w *ExpirationWorker) invalidateSlot(ctx context.Context, booking *domain.Booking) {
	ground, err := w.grounds.FindByID(ctx, booking.GroundID)
	if err != nil {
		w.logger.Warn("could not load ground for cache invalidation", "booking_id", booking.ID, "error", err)
		return
	}
	groundIDs := []uuid.UUID{ground.ID}
	if partners, err := w.grounds.FindByNames(ctx, domain.RelatedGroundNames(ground.Name)); err == nil {
		for _, p := range partners {
			groundIDs = append(groundIDs, p.ID)
		}
	}
	w.cache.InvalidateDay(ctx, groundIDs, booking.StartTime.UTC().Format("2006-01-02"))
}
