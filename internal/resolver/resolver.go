// Package resolver turns free-form user text into calendar dates and times.
// A fixed, ordered chain of strategies is tried and the first success wins;
// every accepted date passes calendar validation so callers never see an
// impossible day.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/nowwaveradio/smartdate/internal/cache"
	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/logger"
)

// Flags toggles the optional strategy families
type Flags struct {
	SmartCorrection bool
	NaturalLanguage bool
	RelativeDates   bool
}

// DefaultFlags enables every strategy
func DefaultFlags() Flags {
	return Flags{SmartCorrection: true, NaturalLanguage: true, RelativeDates: true}
}

func (f Flags) key() string {
	b := []byte("---")
	if f.SmartCorrection {
		b[0] = 'c'
	}
	if f.NaturalLanguage {
		b[1] = 'n'
	}
	if f.RelativeDates {
		b[2] = 'r'
	}
	return string(b)
}

// Request is one resolution attempt
type Request struct {
	Text    string
	Pattern string
	Locale  *locale.Record // nil means the default locale
	Flags   Flags
	Now     time.Time // zero means the resolver's clock

	// BypassCache resolves without consulting or filling the cache
	BypassCache bool
}

// Result is either a valid date with its formatted text or a failure (OK false)
type Result struct {
	Date      time.Time
	Formatted string
	OK        bool
	Strategy  Strategy
}

// Resolver runs the strategy chain, optionally memoizing results
type Resolver struct {
	cache     *cache.Cache[Result]
	now       func() time.Time
	logger    *slog.Logger
	profiling time.Duration
	attempts  atomic.Int64
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache memoizes successful resolutions in c
func WithCache(c *cache.Cache[Result]) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithNow injects the clock used when a request carries no anchor time
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProfiling logs a warning for resolutions slower than threshold.
// Zero disables profiling.
func WithProfiling(threshold time.Duration) Option {
	return func(r *Resolver) {
		r.profiling = threshold
	}
}

// New creates a resolver. Without WithCache nothing is memoized.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		now:    time.Now,
		logger: logger.Get().Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempts counts how many times the strategy chain actually ran (cache misses)
func (r *Resolver) Attempts() int64 {
	return r.attempts.Load()
}

// Cache returns the resolver's cache, or nil
func (r *Resolver) Cache() *cache.Cache[Result] {
	return r.cache
}

// Logger returns the diagnostics logger
func (r *Resolver) Logger() *slog.Logger {
	return r.logger
}

// Now returns the resolver clock's current time
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Resolve runs the date strategy chain. It never panics and never returns an
// invalid calendar date; failure is reported through Result.OK.
func (r *Resolver) Resolve(req Request) Result {
	return r.run(req, "date", constants.DefaultDateFormat, r.resolveDate)
}

func (r *Resolver) run(req Request, kind, fallbackPattern string, chain func(*attempt) (time.Time, Strategy, bool)) Result {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}
	}

	rec := req.Locale
	if rec == nil {
		rec = locale.Default()
	}
	pattern := req.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = fallbackPattern
	}
	now := req.Now
	if now.IsZero() {
		now = r.now()
	}

	useCache := r.cache != nil && !req.BypassCache
	key := cache.Key(text, kind+":"+pattern, rec.Code+"|"+req.Flags.key())
	if useCache {
		if cached, ok := r.cache.Get(key); ok {
			return cached
		}
	}

	r.attempts.Add(1)
	started := time.Now()

	a := newAttempt(text, pattern, rec, req.Flags, now)
	date, strategy, ok := chain(a)

	if r.profiling > 0 {
		if elapsed := time.Since(started); elapsed > r.profiling {
			r.logger.Warn("Slow date resolution",
				slog.String("text", text),
				slog.String("pattern", pattern),
				slog.String("strategy", strategy.String()),
				slog.Duration("duration", elapsed),
				slog.Duration("threshold", r.profiling))
		}
	}

	if !ok {
		r.logger.Debug("No resolution strategy matched",
			slog.String("text", text),
			slog.String("pattern", pattern),
			slog.String("locale", rec.Code))
		return Result{}
	}

	formatted, err := dateutil.FormatWithFallback(date, pattern, fallbackPattern, rec)
	if err != nil {
		r.logger.Debug("Formatting fell back",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()))
	}

	res := Result{Date: date, Formatted: formatted, OK: true, Strategy: strategy}
	if useCache {
		r.cache.Set(key, res)
	}
	return res
}

// attempt carries the normalized forms of one request through the chain
type attempt struct {
	raw     string // trimmed and width-folded, case preserved
	lower   string
	pattern string
	rec     *locale.Record
	flags   Flags
	now     time.Time
}

func newAttempt(text, pattern string, rec *locale.Record, flags Flags, now time.Time) *attempt {
	// AIDEV-NOTE: width.Fold turns full-width digits and signs ("２０２４", "＋３")
	// into ASCII before any strategy looks at the text
	folded := strings.TrimSpace(width.Fold.String(text))
	return &attempt{
		raw:     folded,
		lower:   cases.Lower(rec.Tag).String(folded),
		pattern: pattern,
		rec:     rec,
		flags:   flags,
		now:     now,
	}
}

func (a *attempt) loc() *time.Location {
	return a.now.Location()
}

// strategy is one link of the chain
type strategy struct {
	id  Strategy
	run func(*attempt) (time.Time, bool)
}

// dateChain is the fixed order of the date strategies. The first success wins.
var dateChain = []strategy{
	{StrategyExact, exactParse},
	{StrategyCorrected, correctedParse},
	{StrategyWeekdayStripped, weekdayStrippedParse},
	{StrategyNumeric, numericHeuristics},
	{StrategyShortcut, shortcutLookup},
	{StrategyExtendedRelative, extendedRelative},
	{StrategyNatural, naturalLanguage},
	{StrategyShortRelative, shortRelative},
	{StrategyFreeText, freeText},
	{StrategyFallback, fallbackLayouts},
}

func (r *Resolver) resolveDate(a *attempt) (time.Time, Strategy, bool) {
	for _, s := range dateChain {
		date, ok := r.try(s, a)
		if !ok {
			continue
		}
		date = dateutil.StartOfDay(date.In(a.loc()))
		if !representable(date) {
			continue
		}
		return date, s.id, true
	}
	return time.Time{}, StrategyNone, false
}

// try runs one strategy, treating a panic as "did not match"
func (r *Resolver) try(s strategy, a *attempt) (date time.Time, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("Resolution strategy panicked",
				slog.String("strategy", s.id.String()),
				slog.String("text", a.raw),
				slog.String("panic", fmt.Sprint(rec)))
			date, ok = time.Time{}, false
		}
	}()
	return s.run(a)
}

// representable keeps results inside what the pattern grammar can format
func representable(t time.Time) bool {
	return t.Year() >= 1 && t.Year() <= 9999
}
