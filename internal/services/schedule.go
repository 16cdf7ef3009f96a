package services

import (
	"time"

	"github.com/sterlingcraftco/taxaware-backend/internal/models"
)

// NextOccurrence computes the date a recurring rule is due after from. Pure:
// same inputs, same output, no side effects.
//
// Calendar-based frequencies clamp the day of month to the target month's
// length, so Jan 31 + 1 month is Feb 28 (29 in leap years), and Feb 29 + 1
// year is Feb 28.
func NextOccurrence(frequency string, from time.Time) (time.Time, error) {
	switch frequency {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyBiWeekly:
		return from.AddDate(0, 0, 14), nil
	case models.FrequencyMonthly:
		return addMonthsClamped(from, 1), nil
	case models.FrequencyQuarterly:
		return addMonthsClamped(from, 3), nil
	case models.FrequencyAnnually:
		return addMonthsClamped(from, 12), nil
	default:
		return time.Time{}, ErrInvalidFrequency
	}
}

// addMonthsClamped adds months without the overflow behaviour of
// time.AddDate, which would turn Jan 31 + 1 month into Mar 2/3.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + months
	year += m / 12
	m = m % 12

	target := time.Month(m + 1)
	if last := daysInMonth(year, target); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, target, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
