package field

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/resolver"
)

// Key names understood by KeyDown
const (
	KeyEnter     = "Enter"
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEscape    = "Escape"
)

// Modifiers select the step magnitude. Meta wins over Shift.
type Modifiers struct {
	Shift bool
	Meta  bool
}

// Key is one key press
type Key struct {
	Name string
	Modifiers
}

// SetExternalValue applies an authoritative value supplied by the host
func (f *Field) SetExternalValue(v null.Time) {
	if v.Valid {
		v = null.TimeFrom(f.normalize(v.Time))
	}

	// AIDEV-NOTE: The user is mid-edit; record the value without touching the
	// buffer so the pending commit compares against the newest external value
	if f.interacting() {
		f.value = v
		f.state.LastExternal = v
		return
	}

	if f.same(v, f.state.LastExternal) {
		return
	}

	f.value = v
	f.state.LastExternal = v
	f.state.Mode = External
	f.text = f.format(v)

	if f.settleTimer != nil {
		f.settleTimer.Stop()
	}
	f.settleTimer = f.sched.After(constants.ExternalSettleDelay, func() {
		if f.state.Mode == External {
			f.state.Mode = Idle
		}
	})
}

// Input records a keystroke. The buffer is stored verbatim; nothing is resolved
// until a commit trigger.
func (f *Field) Input(text string) {
	if !f.editable() {
		return
	}
	f.text = text
	f.state.LastInternalText = text
	f.state.HandledByCommitKey = false
	if f.state.Mode != External {
		f.state.Mode = Internal
	}
	f.cancelStep()
}

// KeyDown handles the commit, step and revert keys
func (f *Field) KeyDown(k Key) {
	switch k.Name {
	case KeyEnter:
		f.state.HandledByCommitKey = true
		f.commit()
		if f.opts.OnCommitKeyDown != nil {
			f.opts.OnCommitKeyDown()
		}
	case KeyArrowUp:
		f.step(-1, k.Modifiers)
	case KeyArrowDown:
		f.step(1, k.Modifiers)
	case KeyEscape:
		f.cancelStep()
		f.text = f.format(f.value)
		if f.state.Mode == Internal {
			f.state.Mode = Idle
		}
	}
}

// Blur schedules a commit after a short delay so a focus change caused by an
// external update does not race it. The blur following an Enter is skipped once.
func (f *Field) Blur() {
	if f.state.HandledByCommitKey {
		f.state.HandledByCommitKey = false
		return
	}
	f.sched.After(constants.BlurCommitDelay, func() {
		if f.state.Mode != External {
			f.commit()
		}
	})
}

// DragStart begins a horizontal scrub at pixel position x
func (f *Field) DragStart(x float64) {
	if !f.editable() {
		return
	}
	f.cancelStep()
	f.drag = dragState{active: true, startX: x, base: f.stepBase()}
	f.state.Mode = Internal
}

// DragMove converts the pixel delta since DragStart into whole steps of the
// active magnitude and emits the stepped value
func (f *Field) DragMove(x float64, mods Modifiers) {
	if !f.drag.active {
		return
	}
	steps := int(math.Trunc((x - f.drag.startX) / f.opts.DragPixelsPerStep))
	if steps == f.drag.steps {
		return
	}
	f.drag.steps = steps

	candidate, ok := f.clamp(f.offset(f.drag.base, steps*f.magnitude(mods)))
	if !ok {
		return
	}
	f.text = f.format(null.TimeFrom(candidate))
	f.emit(null.TimeFrom(candidate))
}

// DragEnd finishes the scrub
func (f *Field) DragEnd() {
	if !f.drag.active {
		return
	}
	f.drag = dragState{}
	f.state.Mode = Idle
	f.text = f.format(f.value)
}

// commit resolves the buffer and emits the result
func (f *Field) commit() {
	if f.state.Mode == External || !f.editable() {
		return
	}
	f.cancelStep()

	text := strings.TrimSpace(f.text)
	if text == "" {
		f.emit(null.Time{})
		f.state.Mode = Idle
		return
	}

	res := f.resolve(text)
	if !res.OK {
		f.logger.LogAttrs(context.Background(), slog.LevelDebug, "Field text did not resolve",
			append(errorutil.ResolutionContext(text, f.opts.Format, f.rec.Code),
				slog.String("kind", f.kind.String()))...)
		f.state.Mode = Idle
		return
	}

	date := res.Date
	if f.kind == Time && f.value.Valid {
		date = withClock(f.value.Time, date)
	}
	clamped, ok := f.clamp(date)
	if !ok {
		f.state.Mode = Idle
		return
	}

	f.emit(null.TimeFrom(clamped))
	f.text = f.format(f.value)
	f.state.Mode = Idle
}

func (f *Field) resolve(text string) resolver.Result {
	req := resolver.Request{
		Text:        text,
		Pattern:     f.opts.Format,
		Locale:      f.rec,
		Flags:       f.flags,
		BypassCache: !f.opts.EnableCache,
	}

	started := time.Now()
	var res resolver.Result
	if f.kind == Time {
		res = f.res.ResolveTime(req)
	} else {
		res = f.res.Resolve(req)
	}

	if f.opts.EnableProfiling {
		if elapsed := time.Since(started); elapsed > f.opts.ProfilingThreshold {
			f.logger.Warn("Slow field resolution",
				slog.String("kind", f.kind.String()),
				slog.String("text", text),
				slog.Duration("duration", elapsed),
				slog.Duration("threshold", f.opts.ProfilingThreshold))
		}
	}
	return res
}

// emit publishes v unless it matches the last external value
func (f *Field) emit(v null.Time) {
	if f.same(v, f.state.LastExternal) {
		return
	}
	f.value = v
	f.state.LastExternal = v
	for _, fn := range f.listeners {
		fn(v)
	}
}

// step moves the value by dir times the active magnitude. The buffer updates
// at once; the value is emitted after the step delay if the mode is still internal.
func (f *Field) step(dir int, mods Modifiers) {
	if !f.opts.EnableKeyboardNavigation || !f.editable() {
		return
	}

	base := f.stepBase()
	candidate, ok := f.clamp(f.offset(base, dir*f.magnitude(mods)))
	if !ok || f.same(null.TimeFrom(candidate), null.TimeFrom(base)) {
		return
	}

	f.pending = null.TimeFrom(candidate)
	f.text = f.format(f.pending)
	f.state.Mode = Internal

	if f.stepTimer != nil {
		f.stepTimer.Stop()
	}
	f.stepTimer = f.sched.After(constants.StepCommitDelay, func() {
		f.stepTimer = nil
		if f.state.Mode != Internal || !f.pending.Valid {
			return
		}
		v := f.pending
		f.pending = null.Time{}
		f.emit(v)
		f.text = f.format(f.value)
		f.state.Mode = Idle
	})
}

func (f *Field) cancelStep() {
	if f.stepTimer != nil {
		f.stepTimer.Stop()
		f.stepTimer = nil
	}
	f.pending = null.Time{}
}

func (f *Field) magnitude(mods Modifiers) int {
	switch {
	case mods.Meta:
		return f.opts.MetaStep
	case mods.Shift:
		return f.opts.ShiftStep
	default:
		return f.opts.Step
	}
}

// stepBase picks what a step moves from: a not yet emitted step, the value,
// the parsed buffer, the middle of the range, then now
func (f *Field) stepBase() time.Time {
	if f.pending.Valid {
		return f.pending.Time
	}
	if f.value.Valid {
		return f.value.Time
	}
	if text := strings.TrimSpace(f.text); text != "" {
		if res := f.resolve(text); res.OK {
			return f.normalize(res.Date)
		}
	}

	lo, hi := f.opts.Min, f.opts.Max
	switch {
	case lo.Valid && hi.Valid && !hi.Time.Before(lo.Time):
		mid := lo.Time.Add(hi.Time.Sub(lo.Time) / 2)
		return f.normalize(mid)
	case lo.Valid:
		return f.normalize(lo.Time)
	case hi.Valid:
		return f.normalize(hi.Time)
	}
	return f.normalize(f.res.Now())
}

func (f *Field) offset(t time.Time, n int) time.Time {
	if f.kind == Time {
		return t.Add(time.Duration(n) * time.Minute)
	}
	return t.AddDate(0, 0, n)
}

// clamp pulls t into [Min, Max]. It fails when Max is before Min.
func (f *Field) clamp(t time.Time) (time.Time, bool) {
	lo, hi := f.opts.Min, f.opts.Max
	if f.kind == Time {
		return f.clampClock(t)
	}

	t = dateutil.StartOfDay(t)
	if lo.Valid && hi.Valid && dateutil.StartOfDay(hi.Time).Before(dateutil.StartOfDay(lo.Time)) {
		return t, false
	}
	if lo.Valid {
		if lower := dateutil.StartOfDay(lo.Time.In(t.Location())); t.Before(lower) {
			t = lower
		}
	}
	if hi.Valid {
		if upper := dateutil.StartOfDay(hi.Time.In(t.Location())); t.After(upper) {
			t = upper
		}
	}
	return t, true
}

// clampClock compares minutes of the day and keeps t's date
func (f *Field) clampClock(t time.Time) (time.Time, bool) {
	lo, hi := f.opts.Min, f.opts.Max
	t = dateutil.StartOfMinute(t)
	if lo.Valid && hi.Valid && minuteOfDay(hi.Time) < minuteOfDay(lo.Time) {
		return t, false
	}
	if lo.Valid && minuteOfDay(t) < minuteOfDay(lo.Time) {
		t = withClock(t, lo.Time)
	}
	if hi.Valid && minuteOfDay(t) > minuteOfDay(hi.Time) {
		t = withClock(t, hi.Time)
	}
	return t, true
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// withClock returns day's date with the hour and minute of clock
func withClock(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}
