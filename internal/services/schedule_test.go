package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		next, err := NextOccurrence("daily", date(2025, time.March, 14))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 15), next)
	})

	t.Run("weekly", func(t *testing.T) {
		next, err := NextOccurrence("weekly", date(2025, time.March, 14))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 21), next)
	})

	t.Run("bi-weekly", func(t *testing.T) {
		next, err := NextOccurrence("bi-weekly", date(2025, time.March, 14))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 28), next)
	})

	t.Run("monthly", func(t *testing.T) {
		next, err := NextOccurrence("monthly", date(2025, time.March, 14))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.April, 14), next)
	})

	t.Run("monthly clamps Jan 31 to Feb 28", func(t *testing.T) {
		next, err := NextOccurrence("monthly", date(2025, time.January, 31))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.February, 28), next)
	})

	t.Run("monthly clamps Jan 31 to Feb 29 in leap year", func(t *testing.T) {
		next, err := NextOccurrence("monthly", date(2024, time.January, 31))
		assert.NoError(t, err)
		assert.Equal(t, date(2024, time.February, 29), next)
	})

	t.Run("monthly clamps Aug 31 to Sep 30", func(t *testing.T) {
		next, err := NextOccurrence("monthly", date(2025, time.August, 31))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.September, 30), next)
	})

	t.Run("quarterly crosses year boundary", func(t *testing.T) {
		next, err := NextOccurrence("quarterly", date(2025, time.November, 30))
		assert.NoError(t, err)
		assert.Equal(t, date(2026, time.February, 28), next)
	})

	t.Run("annually clamps Feb 29 to Feb 28", func(t *testing.T) {
		next, err := NextOccurrence("annually", date(2024, time.February, 29))
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.February, 28), next)
	})

	t.Run("unknown frequency", func(t *testing.T) {
		_, err := NextOccurrence("fortnightly", date(2025, time.March, 14))
		assert.ErrorIs(t, err, ErrInvalidFrequency)
	})

	t.Run("pure function, repeated calls agree", func(t *testing.T) {
		from := date(2025, time.May, 31)
		first, err := NextOccurrence("monthly", from)
		assert.NoError(t, err)
		second, err := NextOccurrence("monthly", from)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("preserves time of day", func(t *testing.T) {
		from := time.Date(2025, time.January, 31, 9, 30, 0, 0, time.UTC)
		next, err := NextOccurrence("monthly", from)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 28, 9, 30, 0, 0, time.UTC), next)
	})
}

func TestSeedNextOccurrence(t *testing.T) {
	now := date(2025, time.June, 15)

	t.Run("future start date is kept", func(t *testing.T) {
		next, err := seedNextOccurrence("monthly", date(2025, time.July, 1), now)
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 1), next)
	})

	t.Run("today is kept", func(t *testing.T) {
		next, err := seedNextOccurrence("weekly", date(2025, time.June, 15), now)
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.June, 15), next)
	})

	t.Run("past start date is advanced", func(t *testing.T) {
		next, err := seedNextOccurrence("monthly", date(2025, time.January, 10), now)
		assert.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 10), next)
	})

	t.Run("invalid frequency", func(t *testing.T) {
		_, err := seedNextOccurrence("hourly", date(2025, time.July, 1), now)
		assert.ErrorIs(t, err, ErrInvalidFrequency)
	})
}
