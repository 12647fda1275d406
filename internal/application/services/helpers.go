package services

import (
	"time"

	"turfbook/internal/domain"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD date into midnight UTC of that day.
func parseDate(s string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date must be in YYYY-MM-DD format")
	}
	return day, nil
}

// dateKey formats a booking's slot date the way cache keys and events use it.
func dateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
