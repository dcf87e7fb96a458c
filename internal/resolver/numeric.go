package resolver

import (
	"strconv"
	"time"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/locale"
)

// resolveDigits interprets a digit-only string as date components relative to now.
// order selects where month and day sit for six and eight digit input and for the
// short month/day forms; five and seven digit input is always read year first.
func resolveDigits(digits string, order locale.Order, now time.Time) (time.Time, bool) {
	if !isDigits(digits) {
		return time.Time{}, false
	}
	if len(digits) > constants.MaxNumericInputDigits {
		digits = digits[:constants.MaxNumericInputDigits]
	}

	loc := now.Location()
	curY, curM, curD := now.Year(), int(now.Month()), now.Day()
	num := func(from, to int) int {
		v, _ := strconv.Atoi(digits[from:to])
		return v
	}

	switch len(digits) {
	case 1:
		// replace the last digit of the current year
		return correctedTime(curY-curY%10+num(0, 1), curM, curD, loc), true

	case 2:
		v := num(0, 2)
		if v >= 1 && v <= 31 {
			return correctedTime(curY, curM, v, loc), true
		}
		return correctedTime(v, curM, curD, loc), true

	case 3:
		first, rest := num(0, 1), num(1, 3)
		if order == locale.OrderDMY {
			// day then month
			if first >= 1 && rest >= 1 && rest <= 12 {
				return correctedTime(curY, rest, first, loc), true
			}
		} else if first >= 1 && first <= 12 && rest >= 1 && rest <= 31 {
			return correctedTime(curY, first, rest, loc), true
		}
		// a year suffix; CorrectYear reads 100-999 as 2000+y
		return correctedTime(num(0, 3), curM, curD, loc), true

	case 4:
		v := num(0, 4)
		month, day := num(0, 2), num(2, 4)
		if order == locale.OrderDMY {
			month, day = day, month
		}
		// AIDEV-NOTE: A valid month/day wins ("1225", "0704"). Otherwise a plausible year
		// ("2024", "1999") is a year, and anything else ("3456", "0000") is clamped as MMDD
		yearPlausible := v >= 1950 && v <= 2100
		mmddValid := month >= 1 && month <= 12 && day >= 1 && day <= 31
		if mmddValid || !yearPlausible {
			return correctedTime(curY, month, day, loc), true
		}
		return correctedTime(v, curM, curD, loc), true

	case 5:
		return correctedTime(num(0, 4), num(4, 5), curD, loc), true

	case 6:
		switch order {
		case locale.OrderMDY:
			return correctedTime(num(4, 6), num(0, 2), num(2, 4), loc), true
		case locale.OrderDMY:
			return correctedTime(num(4, 6), num(2, 4), num(0, 2), loc), true
		}
		return correctedTime(num(0, 2), num(2, 4), num(4, 6), loc), true

	case 7:
		// the seventh digit is the tens digit of a day still being typed
		return correctedTime(num(0, 4), num(4, 6), num(6, 7)*10, loc), true

	case 8:
		switch order {
		case locale.OrderMDY:
			return correctedTime(num(4, 8), num(0, 2), num(2, 4), loc), true
		case locale.OrderDMY:
			return correctedTime(num(4, 8), num(2, 4), num(0, 2), loc), true
		}
		return correctedTime(num(0, 4), num(4, 6), num(6, 8), loc), true
	}

	return time.Time{}, false
}

// isDigits reports whether s is non-empty and made only of ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
