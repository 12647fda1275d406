package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"turfbook/internal/application"
	"turfbook/internal/domain"
)

// ConflictChecker decides whether a (ground, date, hour) slot is blocked by
// existing bookings, honoring the combined-ground blocking relation.
//
// Known limitation, kept on purpose: candidates are fetched by a same-day
// window on start_time, so a legacy multi-hour booking that started the
// previous day and wraps past midnight is not seen by a next-day check.
type ConflictChecker struct {
	bookings application.BookingRepository
	grounds  application.GroundRepository
}

func NewConflictChecker(bookings application.BookingRepository, grounds application.GroundRepository) *ConflictChecker {
	return &ConflictChecker{bookings: bookings, grounds: grounds}
}

// RelevantGroundIDs returns the requested ground's id plus the ids of its
// blocking partners. Partners missing from the catalogue are skipped.
func (c *ConflictChecker) RelevantGroundIDs(ctx context.Context, ground *domain.Ground) ([]uuid.UUID, error) {
	ids := []uuid.UUID{ground.ID}

	partnerNames := domain.RelatedGroundNames(ground.Name)
	if len(partnerNames) == 0 {
		return ids, nil
	}

	partners, err := c.grounds.FindByNames(ctx, partnerNames)
	if err != nil {
		return nil, err
	}
	for _, p := range partners {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// IsSlotBooked reports whether the hour on the given day is blocked for the
// ground. day must be midnight of the requested date.
func (c *ConflictChecker) IsSlotBooked(ctx context.Context, hour int, day time.Time, ground *domain.Ground) (bool, error) {
	candidates, _, err := c.dayCandidates(ctx, day, ground)
	if err != nil {
		return false, err
	}

	for _, b := range candidates {
		if b.Occupies(hour) {
			return true, nil
		}
	}
	return false, nil
}

// BookedHours returns the sorted hours-of-day blocked for the ground on the
// given day.
func (c *ConflictChecker) BookedHours(ctx context.Context, day time.Time, ground *domain.Ground) ([]int, error) {
	candidates, _, err := c.dayCandidates(ctx, day, ground)
	if err != nil {
		return nil, err
	}

	occupied := make(map[int]struct{})
	for _, b := range candidates {
		for h := range b.OccupiedHours() {
			occupied[h] = struct{}{}
		}
	}

	hours := make([]int, 0, len(occupied))
	for h := range occupied {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours, nil
}

func (c *ConflictChecker) dayCandidates(ctx context.Context, day time.Time, ground *domain.Ground) ([]*domain.Booking, []uuid.UUID, error) {
	ids, err := c.RelevantGroundIDs(ctx, ground)
	if err != nil {
		return nil, nil, err
	}

	windowStart := day
	windowEnd := day.Add(24 * time.Hour)

	candidates, err := c.bookings.FindBlockingInWindow(ctx, ids, windowStart, windowEnd)
	if err != nil {
		return nil, nil, err
	}
	return candidates, ids, nil
}
