// Package dateutil provides the date pattern grammar shared by the resolver,
// the reconciliation fields and the logger. Patterns use the familiar
// "yyyy-MM-dd HH:mm" token style and are formatted and parsed with locale
// aware weekday and month names.
package dateutil

import (
	"time"
)

// DaysIn returns the number of days in the given month of the given year
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsValidDate reports whether the triple names a real calendar day
func IsValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= DaysIn(year, time.Month(month))
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMinute drops seconds and sub-second precision
func StartOfMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMinute reports whether a and b agree down to the minute
func SameMinute(a, b time.Time) bool {
	return SameDay(a, b) && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

// FallbackLayouts are common alternate Go layouts users type, ranked by likelihood.
// AIDEV-NOTE: Tried in order after every smarter strategy has given up
var FallbackLayouts = []string{
	"2006-01-02",      // YYYY-MM-DD
	"2006/01/02",      // YYYY/MM/DD
	"2006.01.02",      // YYYY.MM.DD
	"2006-1-2",        // YYYY-M-D
	"2006/1/2",        // YYYY/M/D
	"2006.1.2",        // YYYY.M.D
	"1/2/2006",        // M/D/YYYY
	"01/02/2006",      // MM/DD/YYYY
	"1-2-2006",        // M-D-YYYY
	"01-02-2006",      // MM-DD-YYYY
	"02.01.2006",      // DD.MM.YYYY
	"2.1.2006",        // D.M.YYYY
	"20060102",        // YYYYMMDD
	"2006年1月2日",      // CJK
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseFlexibleDate attempts to parse a date string using the fallback layouts.
// The result is interpreted in loc.
func ParseFlexibleDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range FallbackLayouts {
		if parsed, err := time.ParseInLocation(layout, dateStr, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Layout: "multiple common formats",
		Value:  dateStr,
	}
}

// AddMonths moves t by n calendar months, clamping the day to the target month's
// length so Jan 31 + 1 month is Feb 28/29 instead of overflowing into March
func AddMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)

	day := t.Day()
	if max := DaysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears moves t by n years with the same clamping as AddMonths
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, n*12)
}

// StartOfWeek returns midnight of the Monday on or before t
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// DaysBetween counts calendar days from a to b, ignoring clock time and DST shifts
func DaysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
