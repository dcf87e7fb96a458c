package resolver

import (
	"time"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
)

// CorrectYear maps an implausible year into the 1950-2100 working window.
// Two-digit years pivot at 50, three-digit years and years before 1950 are read
// as suffixes of the current century, and far-future years collapse onto the 2020s.
func CorrectYear(y int) int {
	switch {
	case y < 0:
		return 2000
	case y < 100:
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	case y < 1000:
		return 2000 + y
	case y < 1950:
		return 2000 + y%100
	case y > 2100:
		return 2024 + y%10
	default:
		return y
	}
}

// CorrectDate clamps a (year, month, day) triple to the nearest valid calendar date.
// It never fails.
func CorrectDate(y, m, d int) (int, int, int) {
	year := CorrectYear(y)

	month := m
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}

	day := d
	if max := dateutil.DaysIn(year, time.Month(month)); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return year, month, day
}

// correctedTime builds a start-of-day time from a corrected triple
func correctedTime(y, m, d int, loc *time.Location) time.Time {
	year, month, day := CorrectDate(y, m, d)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
