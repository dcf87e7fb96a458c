package resolver

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
)

// ResolveTime runs the clock strategy chain used by time fields. The result
// carries now's date with the resolved clock time, truncated to the minute.
func (r *Resolver) ResolveTime(req Request) Result {
	return r.run(req, "time", constants.DefaultTimeFormat, r.resolveClock)
}

// clockChain is the fixed order of the time strategies
var clockChain = []strategy{
	{StrategyExact, exactClock},
	{StrategyClock, twelveHourClock},
	{StrategyNumeric, numericClock},
	{StrategyShortcut, clockShortcut},
	{StrategyExtendedRelative, relativeClock},
}

func (r *Resolver) resolveClock(a *attempt) (time.Time, Strategy, bool) {
	for _, s := range clockChain {
		t, ok := r.try(s, a)
		if !ok {
			continue
		}
		t = dateutil.StartOfMinute(t.In(a.loc()))
		if !representable(t) {
			continue
		}
		return t, s.id, true
	}
	return time.Time{}, StrategyNone, false
}

var clockPatterns = []string{"HH:mm", "HH:mm:ss", "HH.mm", "HH時mm分", "HH点mm分"}

// exactClock parses the field pattern and the common 24h forms. A clock that is
// well-formed but out of range ("25:70") is clamped when smart correction is on.
func exactClock(a *attempt) (time.Time, bool) {
	for _, pattern := range append([]string{a.pattern}, clockPatterns...) {
		c, err := dateutil.Extract(a.raw, pattern, a.rec)
		if err != nil || !c.HasClock {
			continue
		}
		t, err := c.Time(a.now)
		if err == nil {
			return t, true
		}
		if errors.Is(err, dateutil.ErrInvalidCalendarDay) && a.flags.SmartCorrection && c.Meridiem == 0 {
			return clockAt(a.now, c.Hour, c.Minute), true
		}
	}
	return time.Time{}, false
}

var (
	meridiemClock = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*(a\.m\.|p\.m\.|am|pm|a|p)$`)
	cjkClock      = regexp.MustCompile(`^(上午|下午|早上|晚上|中午|凌晨|午前|午後|오전|오후)?\s*(\d{1,2})\s*[点點时時시]\s*(半|(\d{1,2})\s*[分분]?)?$`)
)

// twelveHourClock reads "3pm", "3:30 pm", "下午3点", "午後3時半" or "오후 3시 30분"
func twelveHourClock(a *attempt) (time.Time, bool) {
	if m := meridiemClock.FindStringSubmatch(a.lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		pm := strings.HasPrefix(m[3], "p")
		if hour < 1 || hour > 12 || minute > 59 {
			return time.Time{}, false
		}
		return clockAt(a.now, to24(hour, pm), minute), true
	}

	if m := cjkClock.FindStringSubmatch(a.lower); m != nil {
		hour, _ := strconv.Atoi(m[2])
		minute := 0
		switch {
		case m[3] == "半":
			minute = 30
		case m[4] != "":
			minute, _ = strconv.Atoi(m[4])
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}

		switch m[1] {
		case "下午", "晚上", "午後", "오후", "中午":
			if hour < 12 {
				hour += 12
			}
			if m[1] == "中午" && hour >= 18 {
				// 中午12点 is noon, not midnight
				hour -= 12
			}
		case "上午", "早上", "凌晨", "午前", "오전":
			if hour == 12 {
				hour = 0
			}
		}
		return clockAt(a.now, hour, minute), true
	}
	return time.Time{}, false
}

func to24(hour int, pm bool) int {
	if pm {
		if hour == 12 {
			return 12
		}
		return hour + 12
	}
	if hour == 12 {
		return 0
	}
	return hour
}

// numericClock reads digit-only input: "9" is 09:00, "930" is 09:30, "1745" is 17:45.
// Out of range hours and minutes clamp to 23 and 59.
func numericClock(a *attempt) (time.Time, bool) {
	if !isDigits(a.raw) {
		return time.Time{}, false
	}
	num := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}

	var hour, minute int
	switch len(a.raw) {
	case 1, 2:
		hour = num(a.raw)
	case 3:
		hour, minute = num(a.raw[:1]), num(a.raw[1:])
	case 4:
		hour, minute = num(a.raw[:2]), num(a.raw[2:])
	default:
		return time.Time{}, false
	}
	return clockAt(a.now, hour, minute), true
}

var clockKeywords = map[string]func(time.Time) time.Time{
	"now":        dateutil.StartOfMinute,
	"n":          dateutil.StartOfMinute,
	"现在":         dateutil.StartOfMinute,
	"現在":         dateutil.StartOfMinute,
	"今":          dateutil.StartOfMinute,
	"지금":         dateutil.StartOfMinute,
	"jetzt":      dateutil.StartOfMinute,
	"maintenant": dateutil.StartOfMinute,
	"ahora":      dateutil.StartOfMinute,
	"noon":       func(t time.Time) time.Time { return clockAt(t, 12, 0) },
	"中午":         func(t time.Time) time.Time { return clockAt(t, 12, 0) },
	"正午":         func(t time.Time) time.Time { return clockAt(t, 12, 0) },
	"midnight":   func(t time.Time) time.Time { return clockAt(t, 0, 0) },
	"午夜":         func(t time.Time) time.Time { return clockAt(t, 0, 0) },
}

func clockShortcut(a *attempt) (time.Time, bool) {
	if fn, ok := clockKeywords[a.lower]; ok {
		return fn(a.now), true
	}
	return time.Time{}, false
}

var (
	signedClock = regexp.MustCompile(`^([+-])\s*(\d+)\s*(m|min|mins|minutes?|h|hr|hrs|hours?)$`)
	verboseClock = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minutes?|h|hr|hrs|hours?)\s+(ago|later|from now)$`)
	inClock      = regexp.MustCompile(`^in\s+(\d+)\s*(m|min|mins|minutes?|h|hr|hrs|hours?)$`)
	cjkRelClock  = regexp.MustCompile(`^(\d+)\s*(分钟|分鐘|分|小时|小時|个小时|個小時|時間)\s*(前|后|後)$`)
)

// relativeClock reads "+15m", "-2h", "15 minutes later", "in 2 hours" or "30分钟后"
func relativeClock(a *attempt) (time.Time, bool) {
	if !a.flags.RelativeDates {
		return time.Time{}, false
	}

	var amount, unit string
	sign := 1
	switch {
	case signedClock.MatchString(a.lower):
		m := signedClock.FindStringSubmatch(a.lower)
		amount, unit = m[2], m[3]
		if m[1] == "-" {
			sign = -1
		}
	case verboseClock.MatchString(a.lower):
		m := verboseClock.FindStringSubmatch(a.lower)
		amount, unit = m[1], m[2]
		if m[3] == "ago" {
			sign = -1
		}
	case inClock.MatchString(a.lower):
		m := inClock.FindStringSubmatch(a.lower)
		amount, unit = m[1], m[2]
	case cjkRelClock.MatchString(a.lower):
		m := cjkRelClock.FindStringSubmatch(a.lower)
		amount, unit = m[1], m[2]
		if m[3] == "前" {
			sign = -1
		}
	default:
		return time.Time{}, false
	}

	n, err := strconv.Atoi(amount)
	if err != nil || n > constants.MaxRelativeAmount {
		return time.Time{}, false
	}
	step := time.Minute
	if strings.HasPrefix(unit, "h") || strings.Contains(unit, "小") || unit == "時間" {
		step = time.Hour
	}
	return dateutil.StartOfMinute(a.now).Add(time.Duration(sign*n) * step), true
}

// clockAt sets the clock on now's date, clamping to 23:59
func clockAt(now time.Time, hour, minute int) time.Time {
	if hour > 23 {
		hour = 23
	}
	if hour < 0 {
		hour = 0
	}
	if minute > 59 {
		minute = 59
	}
	if minute < 0 {
		minute = 0
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}
