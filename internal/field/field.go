// Package field implements the per-field reconciliation state machine that
// arbitrates between an externally supplied authoritative value and the text
// a user is typing. All handlers must be called from one goroutine, the same
// one that runs the scheduler's callbacks.
package field

import (
	"log/slog"
	"strings"
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/resolver"
	"github.com/nowwaveradio/smartdate/internal/schedule"
)

// Kind selects the granularity of a field
type Kind int

const (
	// Date fields hold calendar days and step in days
	Date Kind = iota
	// Time fields hold clock times and step in minutes
	Time
)

func (k Kind) String() string {
	if k == Time {
		return "time"
	}
	return "date"
}

// Mode is who last changed the field
type Mode int

const (
	Idle Mode = iota
	Internal
	External
)

func (m Mode) String() string {
	switch m {
	case Internal:
		return "internal"
	case External:
		return "external"
	default:
		return "idle"
	}
}

// State is the reconciliation record of a field
type State struct {
	Mode               Mode
	LastExternal       null.Time
	LastInternalText   string
	HandledByCommitKey bool
}

// Options configures a field. Zero values take the documented defaults.
type Options struct {
	Value        null.Time
	DefaultValue null.Time

	Disabled bool
	ReadOnly bool

	// Min and Max bound committed and stepped values. For time fields only the
	// clock part is compared.
	Min null.Time
	Max null.Time

	// Step magnitudes in days (date fields) or minutes (time fields).
	// Defaults 1/7/30 days and 1/15/60 minutes.
	Step      int
	ShiftStep int
	MetaStep  int

	// Format is the display pattern, "yyyy-MM-dd" or "HH:mm" by default
	Format string
	Locale locale.Input

	// Flags selects resolver strategies; nil enables all of them
	Flags *resolver.Flags

	EnableCache              bool
	EnableKeyboardNavigation bool
	EnableProfiling          bool
	ProfilingThreshold       time.Duration

	// DragPixelsPerStep is the horizontal distance that scrubs one step
	DragPixelsPerStep float64

	// OnCommitKeyDown runs after Enter commits, typically to blur the input
	OnCommitKeyDown func()

	Logger *slog.Logger
}

// Field is one editable date or time value
type Field struct {
	kind   Kind
	opts   Options
	rec    *locale.Record
	flags  resolver.Flags
	sched  schedule.Scheduler
	res    *resolver.Resolver
	logger *slog.Logger

	state State
	text  string
	value null.Time

	settleTimer schedule.Timer
	stepTimer   schedule.Timer
	pending     null.Time // stepped value waiting for the step delay
	drag        dragState

	listeners []func(null.Time)
}

type dragState struct {
	active bool
	startX float64
	base   time.Time
	steps  int
}

// New creates a field in Idle mode showing the initial value
func New(kind Kind, opts Options, sched schedule.Scheduler, res *resolver.Resolver) *Field {
	if res == nil {
		res = resolver.New()
	}
	f := &Field{
		kind:   kind,
		sched:  sched,
		res:    res,
		logger: opts.Logger,
	}
	if f.logger == nil {
		f.logger = res.Logger()
	}

	f.opts = withDefaults(kind, opts)
	f.flags = resolver.DefaultFlags()
	if opts.Flags != nil {
		f.flags = *opts.Flags
	}

	rec, err := locale.Resolve(opts.Locale)
	if err != nil {
		errorutil.LogWarning(f.logger, "resolve field locale", err,
			slog.String("locale", opts.Locale.String()))
	}
	f.rec = rec

	initial := opts.Value
	if !initial.Valid {
		initial = opts.DefaultValue
	}
	if initial.Valid {
		initial = null.TimeFrom(f.normalize(initial.Time))
	}
	f.value = initial
	f.state.LastExternal = initial
	f.text = f.format(initial)
	return f
}

func withDefaults(kind Kind, opts Options) Options {
	step, shift, meta := constants.DefaultDateStep, constants.DefaultDateShiftStep, constants.DefaultDateMetaStep
	format := constants.DefaultDateFormat
	if kind == Time {
		step, shift, meta = constants.DefaultTimeStep, constants.DefaultTimeShiftStep, constants.DefaultTimeMetaStep
		format = constants.DefaultTimeFormat
	}

	if opts.Step <= 0 {
		opts.Step = step
	}
	if opts.ShiftStep <= 0 {
		opts.ShiftStep = shift
	}
	if opts.MetaStep <= 0 {
		opts.MetaStep = meta
	}
	if strings.TrimSpace(opts.Format) == "" {
		opts.Format = format
	}
	if opts.ProfilingThreshold <= 0 {
		opts.ProfilingThreshold = constants.DefaultProfilingThreshold
	}
	if opts.DragPixelsPerStep <= 0 {
		opts.DragPixelsPerStep = constants.DefaultDragPixelsPerStep
	}
	return opts
}

// Kind returns the field kind
func (f *Field) Kind() Kind {
	return f.kind
}

// Text returns the live text buffer for display
func (f *Field) Text() string {
	return f.text
}

// Value returns the committed value
func (f *Field) Value() null.Time {
	return f.value
}

// State returns a copy of the reconciliation state
func (f *Field) State() State {
	return f.state
}

// Locale returns the resolved locale record
func (f *Field) Locale() *locale.Record {
	return f.rec
}

// OnChange registers fn to receive every de-duplicated, validated committed value
func (f *Field) OnChange(fn func(null.Time)) {
	if fn != nil {
		f.listeners = append(f.listeners, fn)
	}
}

// interacting reports whether the user is in the middle of an edit
func (f *Field) interacting() bool {
	return f.state.Mode == Internal || f.drag.active
}

func (f *Field) editable() bool {
	return !f.opts.Disabled && !f.opts.ReadOnly
}

// normalize truncates t to the field's granularity
func (f *Field) normalize(t time.Time) time.Time {
	if f.kind == Time {
		return dateutil.StartOfMinute(t)
	}
	return dateutil.StartOfDay(t)
}

// same compares two values at the field's granularity. Time fields compare the clock only.
func (f *Field) same(a, b null.Time) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	if f.kind == Time {
		return a.Time.Hour() == b.Time.Hour() && a.Time.Minute() == b.Time.Minute()
	}
	return dateutil.SameDay(a.Time, b.Time)
}

// format renders a value through the fallback chain: the field pattern, the
// plain pattern for the kind, then the raw ISO substring
func (f *Field) format(v null.Time) string {
	if !v.Valid {
		return ""
	}
	plain := constants.DefaultDateFormat
	if f.kind == Time {
		plain = constants.DefaultTimeFormat
	}
	s, err := dateutil.FormatWithFallback(v.Time, f.opts.Format, plain, f.rec)
	if err != nil {
		errorutil.LogWarning(f.logger, "format field value", err,
			slog.String("format", f.opts.Format),
			slog.String("kind", f.kind.String()))
	}
	return s
}
