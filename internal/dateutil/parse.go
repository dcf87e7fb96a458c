package dateutil

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nowwaveradio/smartdate/internal/locale"
)

// Components are the raw fields read from text by position in a pattern.
// They are not validated against the calendar.
type Components struct {
	Year, Month, Day     int
	Hour, Minute, Second int

	HasYear, HasMonth, HasDay, HasClock bool

	Weekday  int // -1 when the text carried no weekday
	Meridiem int // 0 none, 1 AM, 2 PM
}

var meridiemNames = []struct {
	text string
	pm   bool
}{
	{"a.m.", false}, {"p.m.", true},
	{"am", false}, {"pm", true},
	{"上午", false}, {"下午", true},
	{"午前", false}, {"午後", true},
	{"오전", false}, {"오후", true},
}

// Extract reads components from text according to pattern without checking
// that they form a real date. Structural mismatches return ErrPatternMismatch.
func Extract(text, pattern string, rec *locale.Record) (Components, error) {
	if rec == nil {
		rec = locale.Default()
	}
	p := Compile(pattern)
	c := Components{Weekday: -1}

	if len(p.tokens) == 0 {
		return c, ErrEmptyPattern
	}

	s := text
	for i, tok := range p.tokens {
		nextNumeric := i+1 < len(p.tokens) && p.tokens[i+1].isNumeric()

		switch tok.kind {
		case tokLiteral:
			rest, ok := matchLiteral(s, tok.literal)
			if !ok {
				return c, mismatch(text, pattern)
			}
			s = rest

		case tokYear4:
			v, rest, ok := readDigits(s, 4, 4)
			if !ok {
				return c, mismatch(text, pattern)
			}
			c.Year, c.HasYear, s = v, true, rest

		case tokYear2:
			v, rest, ok := readDigits(s, 2, 2)
			if !ok {
				return c, mismatch(text, pattern)
			}
			if v < 50 {
				v += 2000
			} else {
				v += 1900
			}
			c.Year, c.HasYear, s = v, true, rest

		case tokMonthLong, tokMonthShort:
			m, rest, ok := matchMonthName(s, rec)
			if !ok {
				return c, mismatch(text, pattern)
			}
			c.Month, c.HasMonth, s = int(m), true, rest

		case tokWeekdayLong, tokWeekdayShort:
			wd, rest, ok := matchWeekdayName(s, rec)
			if !ok {
				return c, mismatch(text, pattern)
			}
			c.Weekday, s = int(wd), rest

		case tokMeridiem:
			pm, rest, ok := matchMeridiem(s)
			if !ok {
				return c, mismatch(text, pattern)
			}
			if pm {
				c.Meridiem = 2
			} else {
				c.Meridiem = 1
			}
			s = rest

		default:
			minW, maxW := tok.widths(nextNumeric)
			v, rest, ok := readDigits(s, minW, maxW)
			if !ok {
				return c, mismatch(text, pattern)
			}
			s = rest
			switch tok.kind {
			case tokMonth2, tokMonth:
				c.Month, c.HasMonth = v, true
			case tokDay2, tokDay:
				c.Day, c.HasDay = v, true
			case tokHour24Pad, tokHour24, tokHour12Pad, tokHour12:
				c.Hour, c.HasClock = v, true
			case tokMinute2, tokMinute:
				c.Minute, c.HasClock = v, true
			case tokSecond2, tokSecond:
				c.Second, c.HasClock = v, true
			}
		}
	}

	if strings.TrimSpace(s) != "" {
		return c, mismatch(text, pattern)
	}
	return c, nil
}

// Parse reads text with pattern and returns the resulting time in now's location.
// Fields the pattern does not carry are taken from now (date) or zeroed (clock).
func Parse(text, pattern string, rec *locale.Record, now time.Time) (time.Time, error) {
	c, err := Extract(text, pattern, rec)
	if err != nil {
		return time.Time{}, err
	}
	return c.Time(now)
}

// Time validates the components and builds a time, filling gaps from now
func (c Components) Time(now time.Time) (time.Time, error) {
	year, month, day := now.Year(), int(now.Month()), now.Day()
	if c.HasYear {
		year = c.Year
	}
	if c.HasMonth {
		month = c.Month
	}
	if c.HasDay {
		day = c.Day
	} else if c.HasMonth || c.HasYear {
		day = 1
	}

	hour := c.Hour
	switch c.Meridiem {
	case 1:
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("%w: hour %d", ErrInvalidCalendarDay, hour)
		}
		if hour == 12 {
			hour = 0
		}
	case 2:
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("%w: hour %d", ErrInvalidCalendarDay, hour)
		}
		if hour != 12 {
			hour += 12
		}
	}

	if !IsValidDate(year, month, day) {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidCalendarDay, year, month, day)
	}
	if hour > 23 || c.Minute > 59 || c.Second > 59 {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidCalendarDay, hour, c.Minute, c.Second)
	}

	t := time.Date(year, time.Month(month), day, hour, c.Minute, c.Second, 0, now.Location())
	if c.Weekday >= 0 && int(t.Weekday()) != c.Weekday {
		return time.Time{}, fmt.Errorf("%w: %s is a %s", ErrWeekdayMismatch, t.Format("2006-01-02"), t.Weekday())
	}
	return t, nil
}

func mismatch(text, pattern string) error {
	return fmt.Errorf("%w: %q against %q", ErrPatternMismatch, text, pattern)
}

func (t token) isNumeric() bool {
	switch t.kind {
	case tokLiteral, tokMonthLong, tokMonthShort, tokWeekdayLong, tokWeekdayShort, tokMeridiem:
		return false
	}
	return true
}

// widths returns how many digits a numeric token may consume. Tokens packed
// against another numeric token (yyyyMMdd) must use their fixed width.
func (t token) widths(packed bool) (int, int) {
	switch t.kind {
	case tokMonth2, tokDay2, tokHour24Pad, tokHour12Pad, tokMinute2, tokSecond2:
		if packed {
			return 2, 2
		}
		return 1, 2
	default:
		if packed {
			return 1, 1
		}
		return 1, 2
	}
}

func readDigits(s string, minW, maxW int) (int, string, bool) {
	n, v := 0, 0
	for n < len(s) && n < maxW && s[n] >= '0' && s[n] <= '9' {
		v = v*10 + int(s[n]-'0')
		n++
	}
	if n < minW {
		return 0, s, false
	}
	return v, s[n:], true
}

// matchLiteral consumes lit from s. Spaces in lit match any run of whitespace,
// including none; other characters compare case-insensitively.
func matchLiteral(s, lit string) (string, bool) {
	for _, want := range lit {
		if unicode.IsSpace(want) {
			s = strings.TrimLeftFunc(s, unicode.IsSpace)
			continue
		}
		got, size := utf8.DecodeRuneInString(s)
		if size == 0 || unicode.ToLower(got) != unicode.ToLower(want) {
			return s, false
		}
		s = s[size:]
	}
	return s, true
}

// matchPrefixFold returns the length of the longest candidate that prefixes s
func matchPrefixFold(s string, candidates []string) (int, int) {
	best, bestLen := -1, 0
	lower := strings.ToLower(s)
	for i, cand := range candidates {
		c := strings.ToLower(cand)
		if c != "" && len(c) > bestLen && strings.HasPrefix(lower, c) {
			best, bestLen = i, len(c)
		}
	}
	return best, bestLen
}

func matchMonthName(s string, rec *locale.Record) (time.Month, string, bool) {
	for _, r := range nameSources(rec) {
		candidates := append(append([]string{}, r.Months[:]...), r.MonthsShort[:]...)
		if idx, n := matchPrefixFold(s, candidates); idx >= 0 {
			return time.Month(idx%12 + 1), s[n:], true
		}
	}
	return 0, s, false
}

func matchWeekdayName(s string, rec *locale.Record) (time.Weekday, string, bool) {
	for _, r := range nameSources(rec) {
		candidates := append(append([]string{}, r.Weekdays[:]...), r.WeekdaysShort[:]...)
		if idx, n := matchPrefixFold(s, candidates); idx >= 0 {
			return time.Weekday(idx % 7), s[n:], true
		}
	}
	return 0, s, false
}

func matchMeridiem(s string) (bool, string, bool) {
	lower := strings.ToLower(s)
	for _, m := range meridiemNames {
		if strings.HasPrefix(lower, m.text) {
			return m.pm, s[len(m.text):], true
		}
	}
	return false, s, false
}

// nameSources lists the locale first and English second so typed English names
// are understood under any locale
func nameSources(rec *locale.Record) []*locale.Record {
	def := locale.Default()
	if rec == def {
		return []*locale.Record{rec}
	}
	return []*locale.Record{rec, def}
}

// StripWeekdayNames removes every weekday name known to rec (and English) from text
// and tidies the separators left behind
func StripWeekdayNames(text string, rec *locale.Record) string {
	if rec == nil {
		rec = locale.Default()
	}
	out := text
	for _, r := range nameSources(rec) {
		for _, name := range r.WeekdayNames() {
			out = replaceFold(out, name, " ")
		}
	}

	for _, empty := range []string{"()", "（）"} {
		out = strings.ReplaceAll(out, empty, " ")
	}
	out = strings.Join(strings.Fields(out), " ")
	out = strings.Trim(out, weekdaySeparators)
	return strings.TrimSpace(strings.ReplaceAll(out, " ,", ","))
}

// replaceFold replaces every case-insensitive occurrence of old in s
func replaceFold(s, old, replacement string) string {
	lowerOld := strings.ToLower(old)
	if lowerOld == "" || len(lowerOld) != len(old) || len(strings.ToLower(s)) != len(s) {
		return strings.ReplaceAll(s, old, replacement)
	}

	var b strings.Builder
	for {
		idx := strings.Index(strings.ToLower(s), lowerOld)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(replacement)
		s = s[idx+len(old):]
	}
}
