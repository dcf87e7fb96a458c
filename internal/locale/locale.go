// Package locale resolves locale identifiers into immutable records carrying the
// weekday and month name tables used by the resolver and formatter. Records are
// built once per supported locale and shared.
package locale

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Order is the conventional ordering of numeric date components for a locale
type Order int

const (
	OrderYMD Order = iota
	OrderMDY
	OrderDMY
)

func (o Order) String() string {
	switch o {
	case OrderMDY:
		return "MDY"
	case OrderDMY:
		return "DMY"
	default:
		return "YMD"
	}
}

// Record is the canonical, immutable description of a locale
type Record struct {
	Code          string
	Tag           language.Tag
	Weekdays      [7]string // Sunday first, matching time.Weekday
	WeekdaysShort [7]string
	Months        [12]string
	MonthsShort   [12]string
	Order         Order
}

// Input is either a locale identifier or an already resolved Record
type Input struct {
	id     string
	record *Record
}

// ID wraps a string identifier such as "en-US", "zh_CN.UTF-8" or "ja"
func ID(code string) Input {
	return Input{id: code}
}

// FromRecord wraps a record so it passes through Resolve untouched
func FromRecord(r *Record) Input {
	return Input{record: r}
}

// IsRecord reports whether the input already carries a resolved record
func (in Input) IsRecord() bool {
	return in.record != nil
}

func (in Input) String() string {
	if in.record != nil {
		return in.record.Code
	}
	return in.id
}

// ErrUnsupportedLocale is wrapped by FallbackError
var ErrUnsupportedLocale = errors.New("unsupported locale")

// FallbackError is the diagnostic returned alongside the default record when an
// identifier cannot be matched to a supported locale
type FallbackError struct {
	Requested string
	Fallback  string
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("locale %q is not supported, using %s", e.Requested, e.Fallback)
}

func (e *FallbackError) Unwrap() error {
	return ErrUnsupportedLocale
}

type definition struct {
	code   string
	tag    language.Tag
	monday monday.Locale
	order  Order
}

// AIDEV-NOTE: The first entry is the default and the matcher's fallback
var definitions = []definition{
	{"en-US", language.AmericanEnglish, monday.LocaleEnUS, OrderMDY},
	{"en-GB", language.BritishEnglish, monday.LocaleEnGB, OrderDMY},
	{"zh-CN", language.SimplifiedChinese, monday.LocaleZhCN, OrderYMD},
	{"zh-TW", language.TraditionalChinese, monday.LocaleZhTW, OrderYMD},
	{"ja-JP", language.MustParse("ja-JP"), monday.LocaleJaJP, OrderYMD},
	{"ko-KR", language.MustParse("ko-KR"), monday.LocaleKoKR, OrderYMD},
	{"de-DE", language.MustParse("de-DE"), monday.LocaleDeDE, OrderDMY},
	{"fr-FR", language.MustParse("fr-FR"), monday.LocaleFrFR, OrderDMY},
	{"es-ES", language.MustParse("es-ES"), monday.LocaleEsES, OrderDMY},
}

var (
	matcher language.Matcher

	mu      sync.Mutex
	records = make(map[string]*Record)
)

func init() {
	tags := make([]language.Tag, len(definitions))
	for i, def := range definitions {
		tags[i] = def.tag
	}
	matcher = language.NewMatcher(tags)
}

// Supported returns the codes of every supported locale, default first
func Supported() []string {
	codes := make([]string, len(definitions))
	for i, def := range definitions {
		codes[i] = def.code
	}
	return codes
}

// Default returns the default locale record
func Default() *Record {
	return recordFor(0)
}

// Resolve maps an input to its canonical record. Unsupported identifiers resolve
// to the default record together with a *FallbackError describing the substitution.
func Resolve(in Input) (*Record, error) {
	if in.record != nil {
		return in.record, nil
	}

	raw := normalizeIdentifier(in.id)
	if raw == "" {
		return Default(), nil
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return Default(), &FallbackError{Requested: in.id, Fallback: definitions[0].code}
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default(), &FallbackError{Requested: in.id, Fallback: definitions[0].code}
	}

	return recordFor(index), nil
}

// Must resolves an input and discards the fallback diagnostic
func Must(in Input) *Record {
	rec, _ := Resolve(in)
	return rec
}

// normalizeIdentifier turns POSIX style identifiers into BCP 47
func normalizeIdentifier(raw string) string {
	locale := strings.TrimSpace(raw)
	if idx := strings.IndexByte(locale, '.'); idx >= 0 {
		locale = locale[:idx]
	}
	if idx := strings.IndexByte(locale, '@'); idx >= 0 {
		locale = locale[:idx]
	}
	return strings.ReplaceAll(locale, "_", "-")
}

func recordFor(index int) *Record {
	def := definitions[index]

	mu.Lock()
	defer mu.Unlock()

	if rec, ok := records[def.code]; ok {
		return rec
	}
	rec := build(def)
	records[def.code] = rec
	return rec
}

// build renders reference dates through monday to obtain localized names
func build(def definition) *Record {
	rec := &Record{
		Code:  def.code,
		Tag:   def.tag,
		Order: def.order,
	}

	// 2023-01-01 is a Sunday
	for i := 0; i < 7; i++ {
		day := time.Date(2023, time.January, 1+i, 0, 0, 0, 0, time.UTC)
		rec.Weekdays[i] = monday.Format(day, "Monday", def.monday)
		rec.WeekdaysShort[i] = monday.Format(day, "Mon", def.monday)
	}
	for i := 0; i < 12; i++ {
		month := time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		rec.Months[i] = monday.Format(month, "January", def.monday)
		rec.MonthsShort[i] = monday.Format(month, "Jan", def.monday)
	}
	return rec
}

// Language returns the base language, e.g. "zh" for zh-TW
func (r *Record) Language() string {
	base, _ := r.Tag.Base()
	return base.String()
}

// IsCJK reports whether the locale conventionally writes dates year first with CJK markers
func (r *Record) IsCJK() bool {
	switch r.Language() {
	case "zh", "ja", "ko":
		return true
	}
	return false
}

// IsEnglish reports whether the locale's base language is English
func (r *Record) IsEnglish() bool {
	return r.Language() == "en"
}

// WeekdayIndex looks up a localized weekday name, long or short, case-insensitively
func (r *Record) WeekdayIndex(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for i := 0; i < 7; i++ {
		if strings.ToLower(r.Weekdays[i]) == name || strings.ToLower(r.WeekdaysShort[i]) == name {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// MonthIndex looks up a localized month name, long or short, case-insensitively
func (r *Record) MonthIndex(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for i := 0; i < 12; i++ {
		if strings.ToLower(r.Months[i]) == name || strings.ToLower(r.MonthsShort[i]) == name {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// WeekdayNames returns every long and short weekday name, longest first so
// callers can strip names without leaving partial matches behind
func (r *Record) WeekdayNames() []string {
	names := make([]string, 0, 14)
	names = append(names, r.Weekdays[:]...)
	names = append(names, r.WeekdaysShort[:]...)
	sortByLengthDesc(names)
	return names
}

func sortByLengthDesc(items []string) {
	sort.SliceStable(items, func(i, j int) bool {
		return utf8.RuneCountInString(items[i]) > utf8.RuneCountInString(items[j])
	})
}
