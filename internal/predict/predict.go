// Package predict produces the live preview shown while a user types: the
// resolved date, a short description relative to today and a confidence score
// derived from the shape of the input.
package predict

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/matcher"
	"github.com/nowwaveradio/smartdate/internal/resolver"
)

// Prediction is the preview for one input. OK is false when nothing resolved.
type Prediction struct {
	OK          bool
	Date        time.Time
	Formatted   string
	Description string
	Confidence  float64
	Category    string
	Strategy    resolver.Strategy
}

// Engine wraps a resolver to build predictions
type Engine struct {
	res   *resolver.Resolver
	flags resolver.Flags
}

// Option configures an Engine
type Option func(*Engine)

// WithFlags limits the strategies used for predictions
func WithFlags(flags resolver.Flags) Option {
	return func(e *Engine) {
		e.flags = flags
	}
}

// New creates an engine over res
func New(res *resolver.Resolver, opts ...Option) *Engine {
	if res == nil {
		res = resolver.New()
	}
	e := &Engine{res: res, flags: resolver.DefaultFlags()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict resolves text and describes the result. A nil rec uses the default locale.
func (e *Engine) Predict(text, pattern string, rec *locale.Record) Prediction {
	if rec == nil {
		rec = locale.Default()
	}
	res := e.res.Resolve(resolver.Request{
		Text:    text,
		Pattern: pattern,
		Locale:  rec,
		Flags:   e.flags,
	})
	if !res.OK {
		return Prediction{}
	}

	return Prediction{
		OK:          true,
		Date:        res.Date,
		Formatted:   res.Formatted,
		Description: Describe(res.Date, e.res.Now(), res.Formatted, rec),
		Confidence:  Confidence(text, rec.Code),
		Category:    res.Strategy.Category(),
		Strategy:    res.Strategy,
	}
}

// descriptions holds the relative phrases per language
type descriptions struct {
	today, tomorrow, yesterday string
	inDays, daysAgo            func(n int) string
}

var descriptionTables = map[string]descriptions{
	"en": {
		today:     "Today",
		tomorrow:  "Tomorrow",
		yesterday: "Yesterday",
		inDays:    func(n int) string { return "In " + strconv.Itoa(n) + " days" },
		daysAgo:   func(n int) string { return strconv.Itoa(n) + " days ago" },
	},
	"zh": {
		today:     "今天",
		tomorrow:  "明天",
		yesterday: "昨天",
		inDays:    func(n int) string { return strconv.Itoa(n) + "天后" },
		daysAgo:   func(n int) string { return strconv.Itoa(n) + "天前" },
	},
}

// Describe buckets the day offset of date from now. Offsets beyond a week
// fall back to the formatted date.
func Describe(date, now time.Time, formatted string, rec *locale.Record) string {
	table, ok := descriptionTables[rec.Language()]
	if !ok {
		table = descriptionTables["en"]
	}

	offset := dateutil.DaysBetween(now, date)
	switch {
	case offset == 0:
		return table.today
	case offset == 1:
		return table.tomorrow
	case offset == -1:
		return table.yesterday
	case offset > 1 && offset <= 7:
		return table.inDays(offset)
	case offset < -1 && offset >= -7:
		return table.daysAgo(-offset)
	default:
		return formatted
	}
}

// Confidence scores the input by its shape. Shortcuts are certain; longer
// digit strings leave less room for interpretation.
func Confidence(text, code string) float64 {
	text = strings.TrimSpace(width.Fold.String(text))

	if matcher.IsShortcut(text, code) {
		return 1.0
	}
	if isDigits(text) {
		switch len(text) {
		case 8:
			return 0.95
		case 6:
			return 0.90
		case 4:
			return 0.85
		case 3:
			return 0.80
		case 2:
			return 0.75
		case 1:
			return 0.60
		}
		return 0.70
	}
	if matcher.ContainsUnitWord(text, code) {
		return 0.85
	}
	if strings.ContainsAny(text, "-/. ") {
		return 0.80
	}
	return 0.70
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
