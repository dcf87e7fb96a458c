package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/field"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/logger"
	"github.com/nowwaveradio/smartdate/internal/resolver"
	"github.com/nowwaveradio/smartdate/internal/schedule"
)

// script is a recorded sequence of field interactions.
//
//	kind: date
//	start: 2024-06-15T09:00:00Z
//	field:
//	  value: 2024-06-15
//	  max: 2024-06-20
//	events:
//	  - key: ArrowDown
//	    shift: true
//	  - advance: 50ms
//	    expect: {value: 2024-06-20, mode: idle}
type script struct {
	Kind   string        `yaml:"kind"`
	Start  string        `yaml:"start"`
	Field  scriptField   `yaml:"field"`
	Events []scriptEvent `yaml:"events"`
}

type scriptField struct {
	Value    string `yaml:"value"`
	Min      string `yaml:"min"`
	Max      string `yaml:"max"`
	Format   string `yaml:"format"`
	Locale   string `yaml:"locale"`
	Disabled bool   `yaml:"disabled"`
	ReadOnly bool   `yaml:"read_only"`
}

// scriptEvent holds exactly one action; expect is checked after it runs
type scriptEvent struct {
	Input    *string      `yaml:"input"`
	Key      string       `yaml:"key"`
	Shift    bool         `yaml:"shift"`
	Meta     bool         `yaml:"meta"`
	Blur     bool         `yaml:"blur"`
	External *string      `yaml:"external"` // "" clears the value
	Drag     *scriptDrag  `yaml:"drag"`
	Advance  string       `yaml:"advance"`
	Expect   *expectation `yaml:"expect"`
}

type scriptDrag struct {
	Start *float64 `yaml:"start"`
	Move  *float64 `yaml:"move"`
	End   bool     `yaml:"end"`
}

type expectation struct {
	Text  *string `yaml:"text"`
	Value *string `yaml:"value"` // "" expects no value
	Mode  string  `yaml:"mode"`
}

var keyAliases = map[string]string{
	"enter":     field.KeyEnter,
	"return":    field.KeyEnter,
	"up":        field.KeyArrowUp,
	"arrowup":   field.KeyArrowUp,
	"down":      field.KeyArrowDown,
	"arrowdown": field.KeyArrowDown,
	"esc":       field.KeyEscape,
	"escape":    field.KeyEscape,
}

type replayCmd struct {
	root *rootCommand
}

func newReplayCommand(root *rootCommand) *cobra.Command {
	c := &replayCmd{root: root}

	return &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay a YAML script of field interactions",
		Long: `Replay a YAML script of field interactions against a date or time field
running on a virtual clock. Every event prints the field's text, mode and value;
expectations that do not hold make the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}
}

func (c *replayCmd) run(cmd *cobra.Command, args []string) error {
	data, err := errorutil.ReadFile(args[0], "read replay script")
	if err != nil {
		return err
	}

	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid replay script %s: %w", args[0], err)
	}

	failures, err := c.replay(cmd.OutOrStdout(), &s)
	if err != nil {
		return err
	}
	c.root.record("%s: %d events, %d failed expectations", args[0], len(s.Events), failures)
	if failures > 0 {
		return fmt.Errorf("%d expectation(s) failed in %s", failures, args[0])
	}
	return nil
}

func (c *replayCmd) replay(out io.Writer, s *script) (int, error) {
	kind := field.Date
	switch strings.ToLower(s.Kind) {
	case "", "date":
	case "time":
		kind = field.Time
	default:
		return 0, fmt.Errorf("unknown field kind %q", s.Kind)
	}

	start := time.Now()
	if s.Start != "" {
		t, err := dateutil.ParseFlexibleDate(s.Start, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("invalid start %q: %w", s.Start, err)
		}
		start = t
	}
	virtual := schedule.NewVirtual(start)

	res, parseCache := c.root.cfg.NewResolver(resolver.WithNow(virtual.Now), resolver.WithLogger(logger.Get().Logger))
	if parseCache != nil {
		defer parseCache.Close()
	}

	opts := c.root.cfg.FieldOptions(kind)
	opts.Disabled = s.Field.Disabled
	opts.ReadOnly = s.Field.ReadOnly
	if s.Field.Format != "" {
		opts.Format = s.Field.Format
	}
	if s.Field.Locale != "" {
		opts.Locale = locale.ID(s.Field.Locale)
	}

	var err error
	if opts.Value, err = scriptTime(s.Field.Value, kind, start); err != nil {
		return 0, err
	}
	if opts.Min, err = scriptTime(s.Field.Min, kind, start); err != nil {
		return 0, err
	}
	if opts.Max, err = scriptTime(s.Field.Max, kind, start); err != nil {
		return 0, err
	}

	f := field.New(kind, opts, virtual, res)
	f.OnChange(func(v null.Time) {
		fprintf(out, "%s %s\n", c.root.color(color.FgGreen).Sprint("  change →"), showValue(v, kind))
	})

	failures := 0
	for i, ev := range s.Events {
		label, err := c.apply(f, virtual, ev, kind, start)
		if err != nil {
			return failures, fmt.Errorf("event %d: %w", i+1, err)
		}
		fprintf(out, "%-24s text=%-14q mode=%-8s value=%s\n", label, f.Text(), f.State().Mode, showValue(f.Value(), kind))

		if ev.Expect != nil {
			for _, problem := range check(f, *ev.Expect, kind) {
				failures++
				fprintf(out, "%s\n", c.root.color(color.FgRed).Sprintf("  ✗ %s", problem))
			}
		}
	}

	virtual.Flush()
	fprintf(out, "%-24s text=%-14q mode=%-8s value=%s\n", "end", f.Text(), f.State().Mode, showValue(f.Value(), kind))
	return failures, nil
}

// apply runs one event and returns its label for the transcript
func (c *replayCmd) apply(f *field.Field, virtual *schedule.Virtual, ev scriptEvent, kind field.Kind, start time.Time) (string, error) {
	mods := field.Modifiers{Shift: ev.Shift, Meta: ev.Meta}

	switch {
	case ev.Input != nil:
		f.Input(*ev.Input)
		return fmt.Sprintf("input %q", *ev.Input), nil

	case ev.Key != "":
		name, ok := keyAliases[strings.ToLower(ev.Key)]
		if !ok {
			return "", fmt.Errorf("unknown key %q", ev.Key)
		}
		f.KeyDown(field.Key{Name: name, Modifiers: mods})
		return "key " + name + modifierSuffix(mods), nil

	case ev.Blur:
		f.Blur()
		return "blur", nil

	case ev.External != nil:
		v, err := scriptTime(*ev.External, kind, start)
		if err != nil {
			return "", err
		}
		f.SetExternalValue(v)
		return "external " + showValue(v, kind), nil

	case ev.Drag != nil:
		switch {
		case ev.Drag.Start != nil:
			f.DragStart(*ev.Drag.Start)
			return fmt.Sprintf("drag start %.0f", *ev.Drag.Start), nil
		case ev.Drag.Move != nil:
			f.DragMove(*ev.Drag.Move, mods)
			return fmt.Sprintf("drag move %.0f", *ev.Drag.Move) + modifierSuffix(mods), nil
		case ev.Drag.End:
			f.DragEnd()
			return "drag end", nil
		}
		return "", fmt.Errorf("drag event needs start, move or end")

	case ev.Advance != "":
		d, err := time.ParseDuration(ev.Advance)
		if err != nil {
			return "", fmt.Errorf("invalid advance %q: %w", ev.Advance, err)
		}
		virtual.Advance(d)
		return "advance " + d.String(), nil

	case ev.Expect != nil:
		return "expect", nil
	}
	return "", fmt.Errorf("event has no action")
}

// check compares the field against an expectation and describes each mismatch
func check(f *field.Field, want expectation, kind field.Kind) []string {
	var problems []string
	if want.Text != nil && f.Text() != *want.Text {
		problems = append(problems, fmt.Sprintf("text = %q, want %q", f.Text(), *want.Text))
	}
	if want.Mode != "" && !strings.EqualFold(f.State().Mode.String(), want.Mode) {
		problems = append(problems, fmt.Sprintf("mode = %s, want %s", f.State().Mode, want.Mode))
	}
	if want.Value != nil {
		got := showValue(f.Value(), kind)
		expected := *want.Value
		if expected == "" {
			expected = "null"
		}
		if got != expected {
			problems = append(problems, fmt.Sprintf("value = %s, want %s", got, expected))
		}
	}
	return problems
}

// scriptTime reads a date ("2024-06-15") or, for time fields, a clock ("09:30").
// Empty text is no value.
func scriptTime(text string, kind field.Kind, start time.Time) (null.Time, error) {
	if text == "" {
		return null.Time{}, nil
	}
	if kind == field.Time {
		if t, err := dateutil.Parse(text, "HH:mm", nil, start); err == nil {
			return null.TimeFrom(t), nil
		}
	}
	t, err := dateutil.ParseFlexibleDate(text, start.Location())
	if err != nil {
		return null.Time{}, fmt.Errorf("invalid date %q: %w", text, err)
	}
	return null.TimeFrom(t), nil
}

func showValue(v null.Time, kind field.Kind) string {
	if !v.Valid {
		return "null"
	}
	if kind == field.Time {
		return v.Time.Format("15:04")
	}
	return v.Time.Format("2006-01-02")
}

func modifierSuffix(m field.Modifiers) string {
	switch {
	case m.Meta:
		return "+meta"
	case m.Shift:
		return "+shift"
	}
	return ""
}
