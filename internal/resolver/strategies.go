package resolver

import (
	"errors"
	"regexp"
	"strconv"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/matcher"
)

// Strategy identifies which link of the chain produced a result
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyCorrected
	StrategyWeekdayStripped
	StrategyNumeric
	StrategyShortcut
	StrategyExtendedRelative
	StrategyNatural
	StrategyShortRelative
	StrategyFreeText
	StrategyFallback
	StrategyClock
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyCorrected:
		return "corrected"
	case StrategyWeekdayStripped:
		return "weekday_stripped"
	case StrategyNumeric:
		return "numeric"
	case StrategyShortcut:
		return "shortcut"
	case StrategyExtendedRelative:
		return "extended_relative"
	case StrategyNatural:
		return "natural"
	case StrategyShortRelative:
		return "short_relative"
	case StrategyFreeText:
		return "free_text"
	case StrategyFallback:
		return "fallback"
	case StrategyClock:
		return "clock"
	default:
		return "none"
	}
}

// Category groups strategies the way previews describe them
func (s Strategy) Category() string {
	switch s {
	case StrategyNumeric:
		return "numeric"
	case StrategyShortcut:
		return "shortcut"
	case StrategyExtendedRelative, StrategyNatural, StrategyShortRelative:
		return "relative"
	default:
		return "parsed"
	}
}

func exactParse(a *attempt) (time.Time, bool) {
	t, err := dateutil.Parse(a.raw, a.pattern, a.rec, a.now)
	return t, err == nil
}

// correctedParse accepts text that matches the pattern's shape but names an
// impossible day ("2024-04-31") and clamps it to the nearest real one
func correctedParse(a *attempt) (time.Time, bool) {
	if !a.flags.SmartCorrection {
		return time.Time{}, false
	}
	c, err := dateutil.Extract(a.raw, a.pattern, a.rec)
	if err != nil || !(c.HasYear || c.HasMonth || c.HasDay) {
		return time.Time{}, false
	}

	year, month, day := a.now.Year(), int(a.now.Month()), a.now.Day()
	if c.HasYear {
		year = c.Year
	}
	if c.HasMonth {
		month = c.Month
	}
	if c.HasDay {
		day = c.Day
	} else {
		day = 1
	}
	return correctedTime(year, month, day, a.loc()), true
}

func weekdayStrippedParse(a *attempt) (time.Time, bool) {
	p := dateutil.Compile(a.pattern)
	if !p.HasWeekday() {
		return time.Time{}, false
	}
	stripped := p.WithoutWeekday().String()
	text := dateutil.StripWeekdayNames(a.raw, a.rec)

	t, err := dateutil.Parse(text, stripped, a.rec, a.now)
	if err == nil {
		return t, true
	}
	if errors.Is(err, dateutil.ErrInvalidCalendarDay) {
		inner := *a
		inner.raw, inner.pattern = text, stripped
		return correctedParse(&inner)
	}
	return time.Time{}, false
}

func numericHeuristics(a *attempt) (time.Time, bool) {
	if !isDigits(a.raw) {
		return time.Time{}, false
	}
	return resolveDigits(a.raw, digitOrder(a.pattern, a.rec), a.now)
}

// digitOrder prefers the field order of the target pattern and falls back to the locale
func digitOrder(pattern string, rec *locale.Record) locale.Order {
	if order, ok := dateutil.Compile(pattern).Order(); ok {
		return order
	}
	return rec.Order
}

func shortcutLookup(a *attempt) (time.Time, bool) {
	return matcher.Shortcut(a.lower, a.rec.Code, a.now)
}

func extendedRelative(a *attempt) (time.Time, bool) {
	if !a.flags.RelativeDates {
		return time.Time{}, false
	}
	return matcher.ExtendedRelative(a.lower, a.rec.Code, a.now)
}

func naturalLanguage(a *attempt) (time.Time, bool) {
	if !a.flags.NaturalLanguage {
		return time.Time{}, false
	}
	return matcher.Natural(a.lower, a.rec.Code, a.now)
}

func shortRelative(a *attempt) (time.Time, bool) {
	if !a.flags.RelativeDates {
		return time.Time{}, false
	}
	return matcher.ShortRelative(a.lower, a.now)
}

var (
	monthDayYear = regexp.MustCompile(`^(\p{L}+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	dayMonthYear = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th|\.)?\s+(?:of\s+)?(\p{L}+)\.?(?:,?\s+(\d{4}))?$`)
	monthYear    = regexp.MustCompile(`^(\p{L}+)\.?(?:,?\s+(\d{4}))?$`)
)

// nlp recognizes English weekday phrases ("this friday", "next tue") that the
// keyword tables do not list
var nlp = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// freeText reads month names written out ("may 15, 2024", "15th may", "may")
// and, for English locales, weekday phrases
func freeText(a *attempt) (time.Time, bool) {
	if !a.flags.NaturalLanguage || !hasLetter(a.lower) {
		return time.Time{}, false
	}

	if t, ok := monthNameDate(a); ok {
		return t, true
	}

	if !a.rec.IsEnglish() {
		return time.Time{}, false
	}
	res, err := nlp.Parse(a.lower, a.now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	return res.Time, true
}

func monthNameDate(a *attempt) (time.Time, bool) {
	var monthName, dayText, yearText string

	if m := monthDayYear.FindStringSubmatch(a.lower); m != nil {
		monthName, dayText, yearText = m[1], m[2], m[3]
	} else if m := dayMonthYear.FindStringSubmatch(a.lower); m != nil {
		dayText, monthName, yearText = m[1], m[2], m[3]
	} else if m := monthYear.FindStringSubmatch(a.lower); m != nil {
		monthName, yearText = m[1], m[2]
	} else {
		return time.Time{}, false
	}

	month, ok := lookupMonth(monthName, a.rec)
	if !ok {
		return time.Time{}, false
	}

	year := a.now.Year()
	if yearText != "" {
		year, _ = strconv.Atoi(yearText)
	}
	day := 1
	if dayText != "" {
		day, _ = strconv.Atoi(dayText)
	}

	if !dateutil.IsValidDate(year, int(month), day) {
		if !a.flags.SmartCorrection {
			return time.Time{}, false
		}
		return correctedTime(year, int(month), day, a.loc()), true
	}
	return time.Date(year, month, day, 0, 0, 0, 0, a.loc()), true
}

// lookupMonth accepts the locale's long and short names, then English ones
func lookupMonth(name string, rec *locale.Record) (time.Month, bool) {
	for _, r := range []*locale.Record{rec, locale.Default()} {
		if m, ok := r.MonthIndex(name); ok {
			return m, true
		}
		// abbreviations such as "janv." keep their dot in some locales
		if m, ok := r.MonthIndex(name + "."); ok {
			return m, true
		}
	}
	return 0, false
}

// fallbackLayouts tries the ranked alternate layouts and then dateparse
func fallbackLayouts(a *attempt) (time.Time, bool) {
	if t, err := dateutil.ParseFlexibleDate(a.raw, a.loc()); err == nil {
		return t, true
	}
	t, err := dateparse.ParseIn(a.raw, a.loc(), dateparse.PreferMonthFirst(a.rec.Order != locale.OrderDMY))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
