// Package recur computes next-occurrence dates for recurring schedules.
package recur

import (
	"time"

	"github.com/folio-dev/folio/internal/model"
)

// Next returns the occurrence after prev for the given period and frequency.
//
// Days and weeks are plain day arithmetic. Months and years shift the
// calendar unit, preserving prev's day-of-month and clamping into short
// months (Jan 31 + 1 month = Feb 28). When the shifted day-of-month falls
// below the anchor's day-of-month, clamping has occurred: the date is walked
// forward to the last day of that month so a "day 31 of every month"
// schedule lands on month ends instead of sliding backward permanently
// (Jan 31 -> Feb 28 -> Mar 31 -> Apr 30).
func Next(prev time.Time, period model.Period, frequency int, anchor time.Time) time.Time {
	var next time.Time
	switch period {
	case model.PeriodDays:
		next = prev.AddDate(0, 0, frequency)
	case model.PeriodWeeks:
		next = prev.AddDate(0, 0, 7*frequency)
	case model.PeriodMonths:
		next = shiftMonths(prev, frequency)
	case model.PeriodYears:
		next = shiftMonths(prev, 12*frequency)
	default:
		// Returning prev here would make a schedule with a bad period
		// recur on the same date forever. Callers validate periods
		// before they reach the scheduler.
		panic("recur: unknown period " + string(period))
	}

	if (period == model.PeriodMonths || period == model.PeriodYears) && next.Day() < anchor.Day() {
		month := next.Month()
		for {
			n := next.AddDate(0, 0, 1)
			if n.Month() != month {
				break
			}
			next = n
		}
	}
	return next
}

// shiftMonths moves t by the given number of calendar months, clamping the
// day-of-month into the target month. time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 3), which is not what a calendar schedule wants.
func shiftMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
