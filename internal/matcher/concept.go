// Package matcher holds the locale keyed keyword and pattern tables that resolve
// canonical phrases such as "today", "+3", "3 days ago" or "3天前" into dates.
// Every matcher takes the anchor time explicitly and returns start-of-day values.
package matcher

import (
	"time"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
)

// Concept is a canonical meaning shared by the keyword tables of every locale
type Concept string

const (
	Today              Concept = "today"
	Tomorrow           Concept = "tomorrow"
	Yesterday          Concept = "yesterday"
	DayAfterTomorrow   Concept = "day_after_tomorrow"
	DayBeforeYesterday Concept = "day_before_yesterday"
	NextWeek           Concept = "next_week"
	LastWeek           Concept = "last_week"
	NextMonth          Concept = "next_month"
	LastMonth          Concept = "last_month"
	NextYear           Concept = "next_year"
	LastYear           Concept = "last_year"
	StartOfWeek        Concept = "start_of_week"
	EndOfWeek          Concept = "end_of_week"
	StartOfMonth       Concept = "start_of_month"
	EndOfMonth         Concept = "end_of_month"
	StartOfYear        Concept = "start_of_year"
	EndOfYear          Concept = "end_of_year"
)

// weekdayConcept names "next <weekday>" and "last <weekday>" concepts
func weekdayConcept(next bool, wd time.Weekday) Concept {
	if next {
		return Concept("next_" + weekdayKey(wd))
	}
	return Concept("last_" + weekdayKey(wd))
}

func weekdayKey(wd time.Weekday) string {
	return [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}[wd]
}

// Apply resolves a concept against now. ok is false for unknown concepts.
func (c Concept) Apply(now time.Time) (time.Time, bool) {
	today := dateutil.StartOfDay(now)

	switch c {
	case Today:
		return today, true
	case Tomorrow:
		return today.AddDate(0, 0, 1), true
	case Yesterday:
		return today.AddDate(0, 0, -1), true
	case DayAfterTomorrow:
		return today.AddDate(0, 0, 2), true
	case DayBeforeYesterday:
		return today.AddDate(0, 0, -2), true
	case NextWeek:
		return today.AddDate(0, 0, 7), true
	case LastWeek:
		return today.AddDate(0, 0, -7), true
	case NextMonth:
		return dateutil.AddMonths(today, 1), true
	case LastMonth:
		return dateutil.AddMonths(today, -1), true
	case NextYear:
		return dateutil.AddYears(today, 1), true
	case LastYear:
		return dateutil.AddYears(today, -1), true
	case StartOfWeek:
		return dateutil.StartOfWeek(today), true
	case EndOfWeek:
		return dateutil.StartOfWeek(today).AddDate(0, 0, 6), true
	case StartOfMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), true
	case EndOfMonth:
		return time.Date(today.Year(), today.Month(), dateutil.DaysIn(today.Year(), today.Month()), 0, 0, 0, 0, today.Location()), true
	case StartOfYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), true
	case EndOfYear:
		return time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location()), true
	}

	// next_<weekday> lands in the following Monday-based week, last_<weekday> in the previous one
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		offset := (int(wd) + 6) % 7
		switch c {
		case weekdayConcept(true, wd):
			return dateutil.StartOfWeek(today).AddDate(0, 0, 7+offset), true
		case weekdayConcept(false, wd):
			return dateutil.StartOfWeek(today).AddDate(0, 0, -7+offset), true
		}
	}
	return time.Time{}, false
}
