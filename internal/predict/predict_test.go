package predict

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/resolver"
)

// Sunday 10 March 2024
var refNow = time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	res := resolver.New(
		resolver.WithNow(func() time.Time { return refNow }),
		resolver.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	return New(res, opts...)
}

func TestPredict(t *testing.T) {
	e := newTestEngine()
	en := locale.Must(locale.ID("en-US"))

	tests := []struct {
		text        string
		description string
		formatted   string
		confidence  float64
		category    string
	}{
		{"today", "Today", "2024-03-10", 1.0, "shortcut"},
		{"tmr", "Tomorrow", "2024-03-11", 1.0, "shortcut"},
		{"yesterday", "Yesterday", "2024-03-09", 1.0, "shortcut"},
		{"+3d", "In 3 days", "2024-03-13", 0.85, "relative"},
		{"5 days ago", "5 days ago", "2024-03-05", 0.85, "relative"},
		{"20241225", "2024-12-25", "2024-12-25", 0.95, "numeric"},
		{"15", "In 5 days", "2024-03-15", 0.75, "numeric"},
		{"2024-04-01", "2024-04-01", "2024-04-01", 0.80, "parsed"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := e.Predict(tt.text, "yyyy-MM-dd", en)
			require.True(t, p.OK)
			assert.Equal(t, tt.description, p.Description)
			assert.Equal(t, tt.formatted, p.Formatted)
			assert.InDelta(t, tt.confidence, p.Confidence, 1e-9)
			assert.Equal(t, tt.category, p.Category)
		})
	}
}

func TestPredictChinese(t *testing.T) {
	e := newTestEngine()
	zh := locale.Must(locale.ID("zh-CN"))

	p := e.Predict("明天", "yyyy-MM-dd", zh)
	require.True(t, p.OK)
	assert.Equal(t, "明天", p.Description)

	p = e.Predict("3天后", "yyyy-MM-dd", zh)
	require.True(t, p.OK)
	assert.Equal(t, "3天后", p.Description)
	assert.Equal(t, "relative", p.Category)
}

func TestPredictFailure(t *testing.T) {
	e := newTestEngine()
	p := e.Predict("garbage!!", "yyyy-MM-dd", nil)
	assert.False(t, p.OK)
	assert.Empty(t, p.Description)
	assert.Zero(t, p.Confidence)
}

func TestPredictWithFlags(t *testing.T) {
	flags := resolver.DefaultFlags()
	flags.RelativeDates = false
	e := newTestEngine(WithFlags(flags))

	assert.False(t, e.Predict("+3d", "yyyy-MM-dd", nil).OK)
	assert.True(t, e.Predict("today", "yyyy-MM-dd", nil).OK)
}

func TestDescribe(t *testing.T) {
	en := locale.Must(locale.ID("en-US"))
	de := locale.Must(locale.ID("de-DE"))

	tests := []struct {
		name   string
		offset int
		rec    *locale.Record
		want   string
	}{
		{"same day", 0, en, "Today"},
		{"a week ahead", 7, en, "In 7 days"},
		{"a week back", -7, en, "7 days ago"},
		{"beyond a week", 8, en, "formatted"},
		{"far past", -30, en, "formatted"},
		{"unlisted language uses english", 1, de, "Tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := refNow.AddDate(0, 0, tt.offset)
			assert.Equal(t, tt.want, Describe(date, refNow, "formatted", tt.rec))
		})
	}
}

func TestDescribeIgnoresClockTime(t *testing.T) {
	en := locale.Must(locale.ID("en-US"))
	late := time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)
	early := time.Date(2024, time.March, 11, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, "Tomorrow", Describe(early, late, "", en))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"t", 1.0},
		{"today", 1.0},
		{"12345678", 0.95},
		{"240315", 0.90},
		{"1225", 0.85},
		{"315", 0.80},
		{"15", 0.75},
		{"5", 0.60},
		{"12345", 0.70},
		{"２０２４０３１５", 0.95},
		{"in 2 weeks", 0.85},
		{"-1m", 0.85},
		{"2024/03/15", 0.80},
		{"next friday", 0.80},
		{"xyz", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.text, "en-US"), 1e-9)
		})
	}
}
