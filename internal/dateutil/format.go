package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nowwaveradio/smartdate/internal/locale"
)

var (
	ErrEmptyPattern       = errors.New("pattern is empty")
	ErrYearOutOfRange     = errors.New("year cannot be represented by the pattern")
	ErrZeroTime           = errors.New("cannot format the zero time")
	ErrPatternMismatch    = errors.New("text does not match pattern")
	ErrInvalidCalendarDay = errors.New("components do not form a valid calendar date")
	ErrWeekdayMismatch    = errors.New("weekday does not match date")
)

// Format renders t using the pattern and the locale's name tables.
// A nil record formats with the default locale.
func Format(t time.Time, pattern string, rec *locale.Record) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", ErrEmptyPattern
	}
	if t.IsZero() {
		return "", ErrZeroTime
	}
	if t.Year() < 0 || t.Year() > 9999 {
		return "", fmt.Errorf("%w: %d", ErrYearOutOfRange, t.Year())
	}
	if rec == nil {
		rec = locale.Default()
	}

	p := Compile(pattern)
	var b strings.Builder
	for _, tok := range p.tokens {
		switch tok.kind {
		case tokLiteral:
			b.WriteString(tok.literal)
		case tokYear4:
			b.WriteString(pad(t.Year(), 4))
		case tokYear2:
			b.WriteString(pad(t.Year()%100, 2))
		case tokMonthLong:
			b.WriteString(rec.Months[t.Month()-1])
		case tokMonthShort:
			b.WriteString(rec.MonthsShort[t.Month()-1])
		case tokMonth2:
			b.WriteString(pad(int(t.Month()), 2))
		case tokMonth:
			b.WriteString(strconv.Itoa(int(t.Month())))
		case tokDay2:
			b.WriteString(pad(t.Day(), 2))
		case tokDay:
			b.WriteString(strconv.Itoa(t.Day()))
		case tokWeekdayLong:
			b.WriteString(rec.Weekdays[t.Weekday()])
		case tokWeekdayShort:
			b.WriteString(rec.WeekdaysShort[t.Weekday()])
		case tokHour24Pad:
			b.WriteString(pad(t.Hour(), 2))
		case tokHour24:
			b.WriteString(strconv.Itoa(t.Hour()))
		case tokHour12Pad:
			b.WriteString(pad(hour12(t.Hour()), 2))
		case tokHour12:
			b.WriteString(strconv.Itoa(hour12(t.Hour())))
		case tokMinute2:
			b.WriteString(pad(t.Minute(), 2))
		case tokMinute:
			b.WriteString(strconv.Itoa(t.Minute()))
		case tokSecond2:
			b.WriteString(pad(t.Second(), 2))
		case tokSecond:
			b.WriteString(strconv.Itoa(t.Second()))
		case tokMeridiem:
			b.WriteString(meridiem(t.Hour(), rec))
		}
	}
	return b.String(), nil
}

// FormatWithFallback formats t with pattern, falling back to fallbackPattern and
// finally to the raw ISO date (or clock) substring. The returned error reports the
// first failure even when a fallback succeeded, so callers can log it.
func FormatWithFallback(t time.Time, pattern, fallbackPattern string, rec *locale.Record) (string, error) {
	s, err := Format(t, pattern, rec)
	if err == nil {
		return s, nil
	}
	if s2, err2 := Format(t, fallbackPattern, rec); err2 == nil {
		return s2, err
	}

	iso := t.Format(time.RFC3339)
	if Compile(fallbackPattern).HasTime() && !Compile(fallbackPattern).HasDate() {
		return iso[11:16], err
	}
	if len(iso) >= 10 {
		return iso[:10], err
	}
	return iso, err
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

func meridiem(hour int, rec *locale.Record) string {
	pm := hour >= 12
	switch rec.Language() {
	case "zh":
		if pm {
			return "下午"
		}
		return "上午"
	case "ja":
		if pm {
			return "午後"
		}
		return "午前"
	case "ko":
		if pm {
			return "오후"
		}
		return "오전"
	}
	if pm {
		return "PM"
	}
	return "AM"
}
