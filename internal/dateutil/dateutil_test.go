package dateutil

import (
	"errors"
	"testing"
	"time"

	"github.com/nowwaveradio/smartdate/internal/locale"
)

var refTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC) // a Tuesday

func TestFormat(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"yyyy-MM-dd", "2024-03-05"},
		{"d/M/yy", "5/3/24"},
		{"EEEE, MMMM d yyyy", "Tuesday, March 5 2024"},
		{"EEE MMM d", "Tue Mar 5"},
		{"h:mm a", "2:07 PM"},
		{"HH:mm:ss", "14:07:09"},
		{"'Day' d", "Day 5"},
		{"'o''clock' H", "o'clock 14"},
		{"yyyyy", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result, err := Format(refTime, tt.pattern, nil)
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.pattern, err)
			}
			if result != tt.expected {
				t.Errorf("Format(%q) = %q, want %q", tt.pattern, result, tt.expected)
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		pattern string
		wantErr error
	}{
		{"empty pattern", refTime, "  ", ErrEmptyPattern},
		{"zero time", time.Time{}, "yyyy", ErrZeroTime},
		{"five digit year", time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), "yyyy", ErrYearOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.t, tt.pattern, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Format() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatWithFallback(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		fallback string
		expected string
		wantErr  bool
	}{
		{"primary succeeds", "dd.MM.yyyy", "yyyy-MM-dd", "05.03.2024", false},
		{"fallback pattern", "", "yyyy-MM-dd", "2024-03-05", true},
		{"raw date", "", "", "2024-03-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FormatWithFallback(refTime, tt.pattern, tt.fallback, nil)
			if result != tt.expected {
				t.Errorf("FormatWithFallback() = %q, want %q", result, tt.expected)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("FormatWithFallback() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	now := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		text     string
		pattern  string
		expected time.Time
		wantErr  error
	}{
		{"iso", "2024-03-05", "yyyy-MM-dd", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"packed", "20240305", "yyyyMMdd", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"unpadded", "3/5/2024", "M/d/yyyy", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"two digit year", "05-03-24", "dd-MM-yy", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"long names", "Tuesday, March 5 2024", "EEEE, MMMM d yyyy", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"names ignore case", "tue mar 5 2024", "EEE MMM d yyyy", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil},
		{"month and year only", "March 2024", "MMMM yyyy", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil},
		{"clock takes now's date", "2:07 pm", "h:mm a", time.Date(2024, 6, 15, 14, 7, 0, 0, time.UTC), nil},
		{"midnight hour", "12:30 am", "h:mm a", time.Date(2024, 6, 15, 0, 30, 0, 0, time.UTC), nil},
		{"weekday mismatch", "Monday, March 5 2024", "EEEE, MMMM d yyyy", time.Time{}, ErrWeekdayMismatch},
		{"impossible day", "2024-02-30", "yyyy-MM-dd", time.Time{}, ErrInvalidCalendarDay},
		{"meridiem hour out of range", "13:00 pm", "h:mm a", time.Time{}, ErrInvalidCalendarDay},
		{"wrong separator", "2024/03/05", "yyyy-MM-dd", time.Time{}, ErrPatternMismatch},
		{"trailing text", "2024-03-05 extra", "yyyy-MM-dd", time.Time{}, ErrPatternMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.text, tt.pattern, nil, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse(%q, %q) error = %v, want %v", tt.text, tt.pattern, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q, %q) unexpected error: %v", tt.text, tt.pattern, err)
			}
			if !result.Equal(tt.expected) {
				t.Errorf("Parse(%q, %q) = %v, want %v", tt.text, tt.pattern, result, tt.expected)
			}
		})
	}
}

func TestExtractDoesNotValidate(t *testing.T) {
	c, err := Extract("2023-02-29", "yyyy-MM-dd", nil)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if c.Year != 2023 || c.Month != 2 || c.Day != 29 || c.Weekday != -1 {
		t.Errorf("Extract() = %+v, want 2023-02-29 without weekday", c)
	}
	if _, err := c.Time(refTime); !errors.Is(err, ErrInvalidCalendarDay) {
		t.Errorf("Components.Time() error = %v, want ErrInvalidCalendarDay", err)
	}
}

func TestPatternInspection(t *testing.T) {
	tests := []struct {
		pattern                                string
		hasDate, hasTime, hasWeekday, hasSecs bool
	}{
		{"yyyy-MM-dd", true, false, false, false},
		{"HH:mm", false, true, false, false},
		{"EEE, d MMM yyyy HH:mm:ss", true, true, true, true},
		{"'year' yyyy", true, false, false, false},
		{"'Mon'", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p := Compile(tt.pattern)
			if p.HasDate() != tt.hasDate || p.HasTime() != tt.hasTime || p.HasWeekday() != tt.hasWeekday || p.HasSeconds() != tt.hasSecs {
				t.Errorf("Compile(%q) date/time/weekday/seconds = %v/%v/%v/%v", tt.pattern,
					p.HasDate(), p.HasTime(), p.HasWeekday(), p.HasSeconds())
			}
			if p.String() != tt.pattern {
				t.Errorf("String() = %q, want %q", p.String(), tt.pattern)
			}
		})
	}
}

func TestWithoutWeekday(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"EEEE, MMMM d yyyy", "MMMM d yyyy"},
		{"MMM d (EEE) yyyy", "MMM d yyyy"},
		{"yyyy-MM-dd EEE", "yyyy-MM-dd"},
		{"yyyy-MM-dd", "yyyy-MM-dd"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := Compile(tt.pattern).WithoutWeekday().String(); got != tt.expected {
				t.Errorf("WithoutWeekday(%q) = %q, want %q", tt.pattern, got, tt.expected)
			}
		})
	}
}

func TestGlob(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"'app-'yyyyMMdd'.log'", "app-*.log"},
		{"'app-'yyyy-MM-dd'.log'", "app-*-*-*.log"},
		{"'log['yyyy']'", `log\[*]`},
		{"'static.log'", "static.log"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := Compile(tt.pattern).Glob(); got != tt.expected {
				t.Errorf("Glob(%q) = %q, want %q", tt.pattern, got, tt.expected)
			}
		})
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		pattern string
		want    locale.Order
		ok      bool
	}{
		{"yyyy-MM-dd", locale.OrderYMD, true},
		{"MM/dd/yyyy", locale.OrderMDY, true},
		{"d MMMM yyyy", locale.OrderDMY, true},
		{"HH:mm", locale.OrderYMD, false},
		{"MMMM yyyy", locale.OrderYMD, false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, ok := Compile(tt.pattern).Order()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Order(%q) = %v, %v, want %v, %v", tt.pattern, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCalendarHelpers(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2100, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.days {
			t.Errorf("DaysIn(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.days)
		}
	}

	if IsValidDate(2023, 2, 29) || IsValidDate(2024, 13, 1) || IsValidDate(2024, 1, 0) {
		t.Error("IsValidDate accepted an impossible date")
	}
	if !IsValidDate(2024, 2, 29) {
		t.Error("IsValidDate rejected 2024-02-29")
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		months   int
		expected time.Time
	}{
		{"clamps to leap day", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"backwards clamp", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), -1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"into next year", time.Date(2024, 12, 15, 8, 0, 0, 0, time.UTC), 1, time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)},
		{"into previous year", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), -1, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)},
		{"many months back", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), -25, time.Date(2021, 12, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.from, tt.months); !got.Equal(tt.expected) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.from, tt.months, got, tt.expected)
			}
		})
	}

	leap := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := AddYears(leap, 1); !got.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("AddYears(2024-02-29, 1) = %v, want 2025-02-28", got)
	}
}

func TestDayArithmetic(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	if got := StartOfWeek(sunday); !got.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfWeek(%v) = %v, want Monday 2024-03-04", sunday, got)
	}

	late := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	early := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(late, early); got != 1 {
		t.Errorf("DaysBetween(late, early) = %d, want 1", got)
	}
	if got := DaysBetween(early, late); got != -1 {
		t.Errorf("DaysBetween(early, late) = %d, want -1", got)
	}
	if got := DaysBetween(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); got != 61 {
		t.Errorf("DaysBetween across a leap February = %d, want 61", got)
	}

	if !SameDay(late, time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)) || SameDay(late, early) {
		t.Error("SameDay compared clock time")
	}
	if !SameMinute(refTime, refTime.Add(30*time.Second)) || SameMinute(refTime, refTime.Add(time.Minute)) {
		t.Error("SameMinute did not compare to the minute")
	}
}

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name        string
		dateStr     string
		expectError bool
		expected    time.Time
	}{
		{"M/D/YYYY format", "6/28/2025", false, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)},
		{"MM/DD/YYYY format", "06/28/2025", false, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)},
		{"YYYY-MM-DD format", "2025-06-28", false, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)},
		{"YYYYMMDD format", "20250628", false, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)},
		{"CJK format", "2025年6月28日", false, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)},
		{"Invalid format", "invalid-date", true, time.Time{}},
		{"Empty string", "", true, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseFlexibleDate(tt.dateStr, time.UTC)

			if tt.expectError {
				if err == nil {
					t.Errorf("ParseFlexibleDate(%q) expected error, got nil", tt.dateStr)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseFlexibleDate(%q) unexpected error: %v", tt.dateStr, err)
				return
			}

			if !result.Equal(tt.expected) {
				t.Errorf("ParseFlexibleDate(%q) = %v, want %v", tt.dateStr, result, tt.expected)
			}
		})
	}
}

func TestStripWeekdayNames(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Tuesday, March 5 2024", "March 5 2024"},
		{"(Tue) Mar 5", "Mar 5"},
		{"2024-03-05 wed", "2024-03-05"},
		{"March 5", "March 5"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := StripWeekdayNames(tt.text, nil); got != tt.expected {
				t.Errorf("StripWeekdayNames(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
