package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"turfbook/internal/application"
	"turfbook/internal/domain"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// AvailabilityService answers "which hours are taken on this ground, this
// date". Answers are cached per (ground, date); every transition that
// changes a slot's visibility invalidates the affected entries.
type AvailabilityService struct {
	grounds   application.GroundRepository
	conflicts *ConflictChecker
	cache     application.AvailabilityCache
	logger    *slog.Logger
}

func NewAvailabilityService(
	grounds application.GroundRepository,
	conflicts *ConflictChecker,
	cache application.AvailabilityCache,
	logger *slog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		grounds:   grounds,
		conflicts: conflicts,
		cache:     cache,
		logger:    logger,
	}
}

func (s *AvailabilityService) DaySlots(ctx context.Context, groundID uuid.UUID, date string) (*DayAvailability, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	ground, err := s.grounds.FindByID(ctx, groundID)
	if err != nil {
		if errors.Is(err, postgres.ErrGroundNotFound) {
			return nil, domain.NewGroundNotFoundError(groundID.String())
		}
		return nil, domain.NewInternalError(err)
	}

	if hours, ok := s.cache.GetDay(ctx, ground.ID, date); ok {
		return &DayAvailability{
			GroundID:    ground.ID,
			GroundName:  ground.Name,
			Date:        date,
			BookedHours: hours,
		}, nil
	}

	hours, err := s.conflicts.BookedHours(ctx, day, ground)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.cache.SetDay(ctx, ground.ID, date, hours)

	return &DayAvailability{
		GroundID:    ground.ID,
		GroundName:  ground.Name,
		Date:        date,
		BookedHours: hours,
	}, nil
}
