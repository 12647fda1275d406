package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ground names recognised by the blocking relation. The combined ground
// physically overlaps both simple grounds, so a booking on any of the three
// blocks the others for that hour.
const (
	GroundOne      = "Ground 1"
	GroundTwo      = "Ground 2"
	GroundCombined = "Combined Ground"
)

// Pricing table keys, one per (day class, half of day) combination.
const (
	PriceWeekdayFirstHalf  = "weekday_first_half"
	PriceWeekdaySecondHalf = "weekday_second_half"
	PriceWeekendFirstHalf  = "weekend_first_half"
	PriceWeekendSecondHalf = "weekend_second_half"
)

// DefaultSlotPrice is charged when a ground's pricing table misses a key.
const DefaultSlotPrice int64 = 1000

// PricingTable maps the four pricing keys to a per-hour price.
type PricingTable map[string]int64

// Ground is a bookable facility. Read-only to this service.
type Ground struct {
	ID        uuid.UUID
	Name      string
	Pricing   PricingTable
	CreatedAt time.Time
}

// PriceFor returns the per-hour price for a slot starting at slotStart.
// The slot is classified by weekday vs weekend and by half of day:
// first-half is [06:00, 18:00), second-half wraps midnight (18:00–05:59).
// A missing table entry falls back to DefaultSlotPrice.
func (t PricingTable) PriceFor(slotStart time.Time) int64 {
	weekday := slotStart.Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday

	hour := slotStart.Hour()
	firstHalf := hour >= 6 && hour < 18

	var key string
	switch {
	case weekend && firstHalf:
		key = PriceWeekendFirstHalf
	case weekend && !firstHalf:
		key = PriceWeekendSecondHalf
	case !weekend && firstHalf:
		key = PriceWeekdayFirstHalf
	default:
		key = PriceWeekdaySecondHalf
	}

	if price, ok := t[key]; ok {
		return price
	}
	return DefaultSlotPrice
}

// RelatedGroundNames returns the names of grounds whose bookings block the
// named ground, derived from the name at request time and never persisted.
// The combined ground blocks both simple grounds; each simple ground blocks
// only the combined one.
func RelatedGroundNames(name string) []string {
	switch name {
	case GroundCombined:
		return []string{GroundOne, GroundTwo}
	case GroundOne, GroundTwo:
		return []string{GroundCombined}
	default:
		return nil
	}
}
