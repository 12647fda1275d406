package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"turfbook/internal/application"
	"turfbook/internal/config"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/infrastructure/gateway"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// minLeadTime is how far in the future a slot must start to be bookable.
const minLeadTime = 30 * time.Minute

// CreateOrderService prices a requested slot, checks it for conflicts,
// persists the booking and pairs it with a gateway order.
type CreateOrderService struct {
	bookings  application.BookingRepository
	grounds   application.GroundRepository
	conflicts *ConflictChecker
	gateway   gateway.Client
	publisher application.EventPublisher
	cache     application.AvailabilityCache
	gwCfg     config.GatewayConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewCreateOrderService(
	bookings application.BookingRepository,
	grounds application.GroundRepository,
	conflicts *ConflictChecker,
	gatewayClient gateway.Client,
	publisher application.EventPublisher,
	cache application.AvailabilityCache,
	gwCfg config.GatewayConfig,
	logger *slog.Logger,
) *CreateOrderService {
	return &CreateOrderService{
		bookings:  bookings,
		grounds:   grounds,
		conflicts: conflicts,
		gateway:   gatewayClient,
		publisher: publisher,
		cache:     cache,
		gwCfg:     gwCfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *CreateOrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if cmd.StartHour < 0 || cmd.StartHour > 23 {
		return nil, domain.NewValidationError("start hour must be between 0 and 23")
	}

	day, err := parseDate(cmd.Date)
	if err != nil {
		return nil, err
	}

	ground, err := s.grounds.FindByID(ctx, cmd.GroundID)
	if err != nil {
		if errors.Is(err, postgres.ErrGroundNotFound) {
			return nil, domain.NewGroundNotFoundError(cmd.GroundID.String())
		}
		return nil, domain.NewInternalError(err)
	}

	slotStart := day.Add(time.Duration(cmd.StartHour) * time.Hour)
	if slotStart.Before(s.now().UTC().Add(minLeadTime)) {
		return nil, domain.NewSlotInPastError()
	}

	booked, err := s.conflicts.IsSlotBooked(ctx, cmd.StartHour, day, ground)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if booked {
		return nil, domain.NewSlotConflictError(cmd.StartHour, cmd.Date)
	}

	amount := ground.Pricing.PriceFor(slotStart)

	booking := domain.NewBooking(cmd.CustomerName, cmd.CustomerPhone, cmd.CustomerEmail, ground.ID, slotStart, amount)
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, domain.NewInternalError(err)
	}

	// Gateway amounts are in minor currency units.
	order, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   amount * 100,
		Currency: s.gwCfg.Currency,
		Receipt:  fmt.Sprintf("booking_%s", booking.ID),
		Notes: map[string]string{
			"booking_id": booking.ID.String(),
			"ground":     ground.Name,
		},
	})
	if err != nil {
		// The PENDING row never blocks a slot; the expiration worker
		// sweeps it if the client does not retry.
		s.logger.Error("gateway order creation failed",
			"booking_id", booking.ID,
			"error", err,
		)
		return nil, domain.NewOrderCreationError(err)
	}

	if err := booking.AttachOrder(order.ID); err != nil {
		return nil, domain.NewInternalError(err)
	}
	if err := s.bookings.Update(ctx, nil, booking); err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.invalidateAvailability(ctx, ground, booking)
	s.publishCreated(ctx, booking)

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"ground", ground.Name,
		"slot_start", booking.StartTime,
		"amount", amount,
	)

	return &CreateOrderResult{
		Booking: booking,
		Order:   order,
		KeyID:   s.gwCfg.KeyID,
	}, nil
}

func (s *CreateOrderService) invalidateAvailability(ctx context.Context, ground *domain.Ground, booking *domain.Booking) {
	ids, err := s.conflicts.RelevantGroundIDs(ctx, ground)
	if err != nil {
		s.logger.Warn("could not resolve grounds for cache invalidation", "error", err)
		return
	}
	s.cache.InvalidateDay(ctx, ids, dateKey(booking.StartTime))
}

func (s *CreateOrderService) publishCreated(ctx context.Context, booking *domain.Booking) {
	err := s.publisher.Publish(ctx, events.RKBookingCreated, events.BookingCreated{
		BookingID: booking.ID.String(),
		GroundID:  booking.GroundID.String(),
		Start:     booking.StartTime.Unix(),
		Amount:    booking.TotalAmount,
	})
	if err != nil {
		s.logger.Warn("failed to publish booking.created", "booking_id", booking.ID, "error", err)
	}
}
