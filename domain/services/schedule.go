package services

import (
	"time"

	"fortuna/domain/entities"
)

// drawHourUTC is the hour of day (UTC) at which every draw resolves
const drawHourUTC = 21

// NextDrawTime computes the next occurrence for a draw frequency after now.
// Explicit date arithmetic per type, no cron strings: next daily 9pm, next
// Sunday 9pm, last Sunday of the month 9pm.
func NextDrawTime(freq entities.DrawFrequency, now time.Time) time.Time {
	now = now.UTC()
	switch freq {
	case entities.DrawFrequencyWeekly:
		return nextWeekday(now, time.Sunday)
	case entities.DrawFrequencyMonthly:
		return nextLastSunday(now)
	default:
		return nextDaily(now)
	}
}

func atDrawHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), drawHourUTC, 0, 0, 0, time.UTC)
}

func nextDaily(now time.Time) time.Time {
	next := atDrawHour(now)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextWeekday(now time.Time, day time.Weekday) time.Time {
	daysAhead := (int(day) - int(now.Weekday()) + 7) % 7
	next := atDrawHour(now.AddDate(0, 0, daysAhead))
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// lastSundayOf returns the last Sunday of the given month at draw hour
func lastSundayOf(year int, month time.Month) time.Time {
	lastDay := time.Date(year, month+1, 0, drawHourUTC, 0, 0, 0, time.UTC)
	return lastDay.AddDate(0, 0, -int(lastDay.Weekday()))
}

func nextLastSunday(now time.Time) time.Time {
	next := lastSundayOf(now.Year(), now.Month())
	if !next.After(now) {
		year, month := now.Year(), now.Month()
		if month == time.December {
			year, month = year+1, time.January
		} else {
			month++
		}
		next = lastSundayOf(year, month)
	}
	return next
}
