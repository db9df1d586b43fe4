package services

import (
	"testing"
	"time"

	"fortuna/domain/entities"

	"github.com/stretchr/testify/assert"
)

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNextDrawTime_Daily(t *testing.T) {
	t.Parallel()

	// Before today's draw hour: today at 21:00
	next := NextDrawTime(entities.DrawFrequencyDaily, utc(2026, time.March, 10, 15, 0))
	assert.Equal(t, utc(2026, time.March, 10, 21, 0), next)

	// After today's draw hour: tomorrow
	next = NextDrawTime(entities.DrawFrequencyDaily, utc(2026, time.March, 10, 22, 0))
	assert.Equal(t, utc(2026, time.March, 11, 21, 0), next)

	// Exactly at the draw hour: the next occurrence, never now
	next = NextDrawTime(entities.DrawFrequencyDaily, utc(2026, time.March, 10, 21, 0))
	assert.Equal(t, utc(2026, time.March, 11, 21, 0), next)
}

func TestNextDrawTime_Weekly(t *testing.T) {
	t.Parallel()

	// Tuesday: the coming Sunday
	next := NextDrawTime(entities.DrawFrequencyWeekly, utc(2026, time.March, 10, 12, 0))
	assert.Equal(t, utc(2026, time.March, 15, 21, 0), next)
	assert.Equal(t, time.Sunday, next.Weekday())

	// Sunday before the draw hour: same day
	next = NextDrawTime(entities.DrawFrequencyWeekly, utc(2026, time.March, 15, 20, 0))
	assert.Equal(t, utc(2026, time.March, 15, 21, 0), next)

	// Sunday after the draw hour: a week out
	next = NextDrawTime(entities.DrawFrequencyWeekly, utc(2026, time.March, 15, 21, 30))
	assert.Equal(t, utc(2026, time.March, 22, 21, 0), next)
}

func TestNextDrawTime_MonthlyLastSunday(t *testing.T) {
	t.Parallel()

	// Mid-month: the last Sunday of this month
	next := NextDrawTime(entities.DrawFrequencyMonthly, utc(2026, time.March, 10, 12, 0))
	assert.Equal(t, utc(2026, time.March, 29, 21, 0), next)

	// Past this month's last Sunday: next month's
	next = NextDrawTime(entities.DrawFrequencyMonthly, utc(2026, time.March, 29, 22, 0))
	assert.Equal(t, utc(2026, time.April, 26, 21, 0), next)
}

func TestNextDrawTime_MonthlyYearRollover(t *testing.T) {
	t.Parallel()

	// After December's last Sunday the next draw lands in January
	next := NextDrawTime(entities.DrawFrequencyMonthly, utc(2026, time.December, 27, 22, 0))
	assert.Equal(t, utc(2027, time.January, 31, 21, 0), next)
}

func TestNextDrawTime_AlwaysStrictlyFuture(t *testing.T) {
	t.Parallel()

	frequencies := []entities.DrawFrequency{
		entities.DrawFrequencyDaily,
		entities.DrawFrequencyWeekly,
		entities.DrawFrequencyMonthly,
	}
	// Walk a year of odd times; the next draw must always be in the future
	now := utc(2026, time.January, 1, 0, 17)
	for i := 0; i < 365; i++ {
		for _, freq := range frequencies {
			next := NextDrawTime(freq, now)
			assert.True(t, next.After(now), "%s from %s gave %s", freq, now, next)
			assert.Equal(t, drawHourUTC, next.Hour())
		}
		now = now.Add(24*time.Hour + 13*time.Minute)
	}
}
