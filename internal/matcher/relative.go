package matcher

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
)

// Unit is the granularity of a relative offset
type Unit byte

const (
	Days   Unit = 'd'
	Weeks  Unit = 'w'
	Months Unit = 'm'
	Years  Unit = 'y'
)

// Offset applies n units to the start of now's day. Month and year offsets clamp
// the day so Jan 31 + 1m lands on the last day of February.
func Offset(now time.Time, n int, unit Unit) time.Time {
	today := dateutil.StartOfDay(now)
	switch unit {
	case Weeks:
		return today.AddDate(0, 0, 7*n)
	case Months:
		return dateutil.AddMonths(today, n)
	case Years:
		return dateutil.AddYears(today, n)
	default:
		return today.AddDate(0, 0, n)
	}
}

// relativeRule is one locale pattern. The amount, unit and direction capture
// groups are looked up by name; sign is used when the rule has no direction group.
type relativeRule struct {
	re   *regexp.Regexp
	sign int
}

var unitWords = map[string]Unit{
	"": Days, "d": Days, "day": Days, "days": Days,
	"w": Weeks, "wk": Weeks, "wks": Weeks, "week": Weeks, "weeks": Weeks,
	"m": Months, "mo": Months, "mos": Months, "month": Months, "months": Months,
	"y": Years, "yr": Years, "yrs": Years, "year": Years, "years": Years,

	"天": Days, "日": Days, "周": Weeks, "週": Weeks, "星期": Weeks, "个星期": Weeks, "個星期": Weeks,
	"礼拜": Weeks, "个礼拜": Weeks, "禮拜": Weeks, "個禮拜": Weeks, "月": Months, "个月": Months, "個月": Months, "年": Years,
	"週間": Weeks, "ヶ月": Months, "か月": Months, "カ月": Months,
	"일": Days, "주": Weeks, "주일": Weeks, "개월": Months, "달": Months, "년": Years,
	"tag": Days, "tage": Days, "tagen": Days, "woche": Weeks, "wochen": Weeks, "monat": Months, "monate": Months, "monaten": Months, "jahr": Years, "jahre": Years, "jahren": Years,
	"jour": Days, "jours": Days, "semaine": Weeks, "semaines": Weeks, "mois": Months, "an": Years, "ans": Years, "année": Years, "années": Years,
	"día": Days, "días": Days, "dia": Days, "dias": Days, "semana": Weeks, "semanas": Weeks, "mes": Months, "meses": Months, "año": Years, "años": Years,
}

var directionWords = map[string]int{
	"+": 1, "-": -1,
	"ago": -1, "before": -1, "earlier": -1, "later": 1, "after": 1, "from now": 1, "hence": 1,
	"前": -1, "以前": -1, "之前": -1, "后": 1, "後": 1, "以后": 1, "以後": 1, "之后": 1, "之後": 1,
	"전": -1, "후": 1, "뒤": 1,
}

// AIDEV-NOTE: Inputs reach these rules lowercased and width-folded, so full-width
// digits and "+" already look like their ASCII forms.
var relativeRules = map[string][]relativeRule{
	"en": {
		{re: regexp.MustCompile(`^(?P<dir>[+-])\s*(?P<amount>\d+)\s*(?P<unit>d|w|m|y|days?|weeks?|months?|years?)?$`)},
		{re: regexp.MustCompile(`^(?P<amount>\d+|an?|one)\s*(?P<unit>d|w|m|y|days?|wks?|weeks?|mos?|months?|yrs?|years?)\s+(?P<dir>ago|before|earlier|later|after|from now|hence)$`)},
		{re: regexp.MustCompile(`^in\s+(?P<amount>\d+|an?|one)\s*(?P<unit>d|w|m|y|days?|weeks?|months?|years?)$`), sign: 1},
	},
	"zh": {
		{re: regexp.MustCompile(`^(?P<amount>\d+|[零一二两兩三四五六七八九十百]+)\s*(?P<unit>天|日|个星期|個星期|星期|个礼拜|個禮拜|礼拜|禮拜|周|週|个月|個月|年)\s*(?P<dir>以前|之前|以后|以後|之后|之後|前|后|後)$`)},
	},
	"ja": {
		{re: regexp.MustCompile(`^(?P<amount>\d+|[一二三四五六七八九十百]+)\s*(?P<unit>日|週間|ヶ月|か月|カ月|年)\s*(?P<dir>前|後)$`)},
	},
	"ko": {
		{re: regexp.MustCompile(`^(?P<amount>\d+)\s*(?P<unit>일|주일|주|개월|달|년)\s*(?P<dir>전|후|뒤)$`)},
	},
	"de": {
		{re: regexp.MustCompile(`^vor\s+(?P<amount>\d+|einem|einer)\s+(?P<unit>tagen|tag|wochen|woche|monaten|monat|jahren|jahr)$`), sign: -1},
		{re: regexp.MustCompile(`^in\s+(?P<amount>\d+|einem|einer)\s+(?P<unit>tagen|tag|wochen|woche|monaten|monat|jahren|jahr)$`), sign: 1},
	},
	"fr": {
		{re: regexp.MustCompile(`^il y a\s+(?P<amount>\d+|un|une)\s+(?P<unit>jours?|semaines?|mois|ans?|années?)$`), sign: -1},
		{re: regexp.MustCompile(`^dans\s+(?P<amount>\d+|un|une)\s+(?P<unit>jours?|semaines?|mois|ans?|années?)$`), sign: 1},
	},
	"es": {
		{re: regexp.MustCompile(`^hace\s+(?P<amount>\d+|un|una)\s+(?P<unit>días?|dias?|semanas?|mes(?:es)?|años?)$`), sign: -1},
		{re: regexp.MustCompile(`^(?:en|dentro de)\s+(?P<amount>\d+|un|una)\s+(?P<unit>días?|dias?|semanas?|mes(?:es)?|años?)$`), sign: 1},
	},
}

var wordAmounts = map[string]int{
	"a": 1, "an": 1, "one": 1,
	"einem": 1, "einer": 1,
	"un": 1, "une": 1, "una": 1,
}

// ExtendedRelative resolves signed offsets and locale phrasing such as "+3",
// "-1w", "3 days ago", "in 2 weeks" or "3天前"
func ExtendedRelative(text, code string, now time.Time) (time.Time, bool) {
	n, unit, ok := matchRelative(strings.TrimSpace(text), code)
	if !ok {
		return time.Time{}, false
	}
	return Offset(now, n, unit), true
}

func matchRelative(text, code string) (int, Unit, bool) {
	if text == "" {
		return 0, 0, false
	}
	for _, lang := range languageChain(code) {
		for _, rule := range relativeRules[lang] {
			m := rule.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if n, unit, ok := rule.interpret(m); ok {
				return n, unit, true
			}
		}
	}
	return 0, 0, false
}

func (r relativeRule) interpret(m []string) (int, Unit, bool) {
	group := func(name string) string {
		if idx := r.re.SubexpIndex(name); idx >= 0 {
			return m[idx]
		}
		return ""
	}

	amount, ok := parseAmount(group("amount"))
	if !ok {
		return 0, 0, false
	}
	unit, ok := unitWords[group("unit")]
	if !ok {
		return 0, 0, false
	}

	sign := r.sign
	if sign == 0 {
		if sign, ok = directionWords[group("dir")]; !ok {
			return 0, 0, false
		}
	}
	return sign * amount, unit, true
}

func parseAmount(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, v <= constants.MaxRelativeAmount
	}
	if v, ok := wordAmounts[s]; ok {
		return v, true
	}
	return parseCJKNumeral(s)
}

var shortRelative = regexp.MustCompile(`^([+-]?)(\d+)\s*([dwmy])$`)

// ShortRelative resolves compact tokens such as "3d", "+1w", "-2m" or "1y".
// An unsigned token counts forward.
func ShortRelative(text string, now time.Time) (time.Time, bool) {
	m := shortRelative.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n > constants.MaxRelativeAmount {
		return time.Time{}, false
	}
	if m[1] == "-" {
		n = -n
	}
	return Offset(now, n, Unit(m[3][0])), true
}

// ContainsUnitWord reports whether text reads as a relative offset or mentions a
// unit word such as "days" or "weeks"
func ContainsUnitWord(text, code string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if _, _, ok := matchRelative(lower, code); ok {
		return true
	}
	if shortRelative.MatchString(lower) {
		return true
	}
	for _, field := range strings.Fields(lower) {
		word := strings.Trim(field, "+-0123456789")
		if len(word) < 2 {
			continue
		}
		if _, ok := unitWords[word]; ok {
			return true
		}
	}
	return false
}
