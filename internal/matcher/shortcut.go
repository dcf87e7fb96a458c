package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/nowwaveradio/smartdate/internal/locale"
)

// aliasTable maps normalized tokens to concepts for one language
type aliasTable struct {
	aliasMap map[string]Concept
}

// newAliasTable builds the alias-to-concept mapping and rejects tokens claimed by
// more than one concept
func newAliasTable(entries map[Concept][]string) (*aliasTable, error) {
	t := &aliasTable{aliasMap: make(map[string]Concept)}
	conflictCheck := make(map[string][]Concept)

	for concept, aliases := range entries {
		for _, alias := range aliases {
			normalized := strings.ToLower(strings.TrimSpace(alias))
			if normalized == "" {
				continue
			}
			t.aliasMap[normalized] = concept
			conflictCheck[normalized] = append(conflictCheck[normalized], concept)
		}
	}

	for alias, concepts := range conflictCheck {
		if len(concepts) > 1 {
			return nil, fmt.Errorf("alias conflict: '%s' is used by multiple concepts: %v", alias, concepts)
		}
	}
	return t, nil
}

func mustAliasTable(entries map[Concept][]string) *aliasTable {
	t, err := newAliasTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// lookup resolves an exact token
func (t *aliasTable) lookup(token string) (Concept, bool) {
	c, ok := t.aliasMap[strings.ToLower(strings.TrimSpace(token))]
	return c, ok
}

// AIDEV-NOTE: Shortcuts are whole-input tokens. The English table is consulted
// after the locale's own table so "today" and "tm" work everywhere.
var shortcutTables = map[string]*aliasTable{
	"en": mustAliasTable(map[Concept][]string{
		Today:     {"today", "tod", "t", "now", "n"},
		Tomorrow:  {"tomorrow", "tmr", "tmrw", "tm", "tom"},
		Yesterday: {"yesterday", "yest", "yd", "y"},
	}),
	"zh": mustAliasTable(map[Concept][]string{
		Today:              {"今天", "今日", "jt"},
		Tomorrow:           {"明天", "明日", "mt"},
		Yesterday:          {"昨天", "昨日", "zt"},
		DayAfterTomorrow:   {"后天", "後天", "ht"},
		DayBeforeYesterday: {"前天", "qt"},
	}),
	"ja": mustAliasTable(map[Concept][]string{
		Today:              {"今日", "きょう", "本日"},
		Tomorrow:           {"明日", "あした", "あす"},
		Yesterday:          {"昨日", "きのう"},
		DayAfterTomorrow:   {"明後日", "あさって"},
		DayBeforeYesterday: {"一昨日", "おととい"},
	}),
	"ko": mustAliasTable(map[Concept][]string{
		Today:              {"오늘"},
		Tomorrow:           {"내일"},
		Yesterday:          {"어제"},
		DayAfterTomorrow:   {"모레"},
		DayBeforeYesterday: {"그저께", "그제"},
	}),
	"de": mustAliasTable(map[Concept][]string{
		Today:              {"heute", "h"},
		Tomorrow:           {"morgen", "m"},
		Yesterday:          {"gestern", "g"},
		DayAfterTomorrow:   {"übermorgen"},
		DayBeforeYesterday: {"vorgestern"},
	}),
	"fr": mustAliasTable(map[Concept][]string{
		Today:              {"aujourd'hui", "aujourd’hui", "auj"},
		Tomorrow:           {"demain", "dem"},
		Yesterday:          {"hier"},
		DayAfterTomorrow:   {"après-demain", "apres-demain"},
		DayBeforeYesterday: {"avant-hier"},
	}),
	"es": mustAliasTable(map[Concept][]string{
		Today:              {"hoy"},
		Tomorrow:           {"mañana", "manana"},
		Yesterday:          {"ayer"},
		DayAfterTomorrow:   {"pasado mañana", "pasado manana"},
		DayBeforeYesterday: {"anteayer", "antier"},
	}),
}

// languageChain lists the table keys to consult for a locale code, own language first
func languageChain(code string) []string {
	lang := locale.Must(locale.ID(code)).Language()
	if lang == "en" {
		return []string{"en"}
	}
	return []string{lang, "en"}
}

// Shortcut resolves exact keyword tokens such as "today", "tm" or "明天".
// text must already be trimmed; matching is case-insensitive.
func Shortcut(text, code string, now time.Time) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, lang := range languageChain(code) {
		table, ok := shortcutTables[lang]
		if !ok {
			continue
		}
		if concept, ok := table.lookup(text); ok {
			return concept.Apply(now)
		}
	}
	return time.Time{}, false
}

// IsShortcut reports whether text is an exact keyword token for the locale
func IsShortcut(text, code string) bool {
	for _, lang := range languageChain(code) {
		if table, ok := shortcutTables[lang]; ok {
			if _, ok := table.lookup(text); ok {
				return true
			}
		}
	}
	return false
}
