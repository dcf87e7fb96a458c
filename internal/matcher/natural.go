package matcher

import (
	"strings"
	"time"
)

// phrase is one natural language concept with the synonyms that select it
type phrase struct {
	concept  Concept
	synonyms []string
}

// AIDEV-NOTE: Natural tables are ordered slices, never maps. Matching is by
// substring and the first entry wins, so longer phrases ("day after tomorrow")
// are declared before the shorter ones they contain ("tomorrow").
var naturalTables = map[string][]phrase{
	"en": englishNatural(),
	"zh": chineseNatural(),
	"ja": {
		{DayAfterTomorrow, []string{"明後日", "あさって"}},
		{DayBeforeYesterday, []string{"一昨日", "おととい"}},
		{NextWeek, []string{"来週"}},
		{LastWeek, []string{"先週"}},
		{NextMonth, []string{"来月"}},
		{LastMonth, []string{"先月"}},
		{NextYear, []string{"来年"}},
		{LastYear, []string{"去年", "昨年"}},
		{StartOfMonth, []string{"月初"}},
		{EndOfMonth, []string{"月末"}},
		{Today, []string{"今日", "本日"}},
		{Tomorrow, []string{"明日"}},
		{Yesterday, []string{"昨日"}},
	},
	"ko": {
		{NextWeek, []string{"다음 주", "다음주"}},
		{LastWeek, []string{"지난 주", "지난주"}},
		{NextMonth, []string{"다음 달", "다음달"}},
		{LastMonth, []string{"지난 달", "지난달"}},
		{NextYear, []string{"내년"}},
		{LastYear, []string{"작년"}},
		{Today, []string{"오늘"}},
		{Tomorrow, []string{"내일"}},
		{Yesterday, []string{"어제"}},
	},
	"de": {
		{DayAfterTomorrow, []string{"übermorgen"}},
		{DayBeforeYesterday, []string{"vorgestern"}},
		{NextWeek, []string{"nächste woche", "naechste woche"}},
		{LastWeek, []string{"letzte woche"}},
		{NextMonth, []string{"nächsten monat", "nächster monat"}},
		{LastMonth, []string{"letzten monat", "letzter monat"}},
		{NextYear, []string{"nächstes jahr"}},
		{LastYear, []string{"letztes jahr"}},
		{StartOfMonth, []string{"monatsanfang"}},
		{EndOfMonth, []string{"monatsende"}},
		{Today, []string{"heute"}},
		{Tomorrow, []string{"morgen"}},
		{Yesterday, []string{"gestern"}},
	},
	"fr": {
		{DayAfterTomorrow, []string{"après-demain"}},
		{DayBeforeYesterday, []string{"avant-hier"}},
		{NextWeek, []string{"semaine prochaine"}},
		{LastWeek, []string{"semaine dernière"}},
		{NextMonth, []string{"mois prochain"}},
		{LastMonth, []string{"mois dernier"}},
		{NextYear, []string{"année prochaine", "an prochain"}},
		{LastYear, []string{"année dernière", "an dernier"}},
		{StartOfMonth, []string{"début du mois"}},
		{EndOfMonth, []string{"fin du mois"}},
		{Today, []string{"aujourd'hui"}},
		{Tomorrow, []string{"demain"}},
		{Yesterday, []string{"hier"}},
	},
	"es": {
		{DayAfterTomorrow, []string{"pasado mañana"}},
		{DayBeforeYesterday, []string{"anteayer"}},
		{NextWeek, []string{"próxima semana", "semana que viene"}},
		{LastWeek, []string{"semana pasada"}},
		{NextMonth, []string{"próximo mes", "mes que viene"}},
		{LastMonth, []string{"mes pasado"}},
		{NextYear, []string{"próximo año", "año que viene"}},
		{LastYear, []string{"año pasado"}},
		{StartOfMonth, []string{"principio de mes", "inicio de mes"}},
		{EndOfMonth, []string{"fin de mes"}},
		{Today, []string{"hoy"}},
		{Tomorrow, []string{"mañana"}},
		{Yesterday, []string{"ayer"}},
	},
}

func englishNatural() []phrase {
	table := []phrase{
		{DayAfterTomorrow, []string{"day after tomorrow", "overmorrow"}},
		{DayBeforeYesterday, []string{"day before yesterday"}},
	}

	// weekday phrases precede "next week" style entries they would otherwise lose to
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := weekdayKey(wd)
		table = append(table,
			phrase{weekdayConcept(true, wd), []string{"next " + name}},
			phrase{weekdayConcept(false, wd), []string{"last " + name, "previous " + name}},
		)
	}

	return append(table,
		phrase{NextWeek, []string{"next week"}},
		phrase{LastWeek, []string{"last week", "previous week"}},
		phrase{NextMonth, []string{"next month"}},
		phrase{LastMonth, []string{"last month", "previous month"}},
		phrase{NextYear, []string{"next year"}},
		phrase{LastYear, []string{"last year", "previous year"}},
		phrase{StartOfWeek, []string{"start of week", "start of the week", "beginning of week", "beginning of the week"}},
		phrase{EndOfWeek, []string{"end of week", "end of the week"}},
		phrase{StartOfMonth, []string{"start of month", "start of the month", "beginning of month", "beginning of the month"}},
		phrase{EndOfMonth, []string{"end of month", "end of the month"}},
		phrase{StartOfYear, []string{"start of year", "start of the year", "beginning of year", "beginning of the year"}},
		phrase{EndOfYear, []string{"end of year", "end of the year"}},
		phrase{Today, []string{"today"}},
		phrase{Tomorrow, []string{"tomorrow"}},
		phrase{Yesterday, []string{"yesterday"}},
	)
}

func chineseNatural() []phrase {
	digits := []string{"日", "一", "二", "三", "四", "五", "六"}

	var table []phrase
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		d := digits[wd]
		next := []string{"下周" + d, "下星期" + d, "下禮拜" + d, "下礼拜" + d, "下週" + d}
		last := []string{"上周" + d, "上星期" + d, "上禮拜" + d, "上礼拜" + d, "上週" + d}
		if wd == time.Sunday {
			next = append(next, "下周天", "下星期天")
			last = append(last, "上周天", "上星期天")
		}
		table = append(table,
			phrase{weekdayConcept(true, wd), next},
			phrase{weekdayConcept(false, wd), last},
		)
	}

	return append(table,
		phrase{NextWeek, []string{"下周", "下星期", "下礼拜", "下禮拜", "下週"}},
		phrase{LastWeek, []string{"上周", "上星期", "上礼拜", "上禮拜", "上週"}},
		phrase{NextMonth, []string{"下个月", "下個月", "下月"}},
		phrase{LastMonth, []string{"上个月", "上個月", "上月"}},
		phrase{NextYear, []string{"明年"}},
		phrase{LastYear, []string{"去年"}},
		phrase{StartOfWeek, []string{"本周一", "这周一"}},
		phrase{EndOfWeek, []string{"本周日", "这周日", "周末"}},
		phrase{StartOfMonth, []string{"月初"}},
		phrase{EndOfMonth, []string{"月底", "月末"}},
		phrase{StartOfYear, []string{"年初"}},
		phrase{EndOfYear, []string{"年底", "年末"}},
		phrase{DayAfterTomorrow, []string{"后天", "後天"}},
		phrase{DayBeforeYesterday, []string{"前天"}},
		phrase{Today, []string{"今天", "今日"}},
		phrase{Tomorrow, []string{"明天", "明日"}},
		phrase{Yesterday, []string{"昨天", "昨日"}},
	)
}

// Natural resolves free phrases such as "next week" or "下个月" by substring
// containment. The first declared entry that matches wins.
func Natural(text, code string, now time.Time) (time.Time, bool) {
	if concept, ok := matchNatural(text, code); ok {
		return concept.Apply(now)
	}
	return time.Time{}, false
}

func matchNatural(text, code string) (Concept, bool) {
	lower := strings.ToLower(text)
	if lower == "" {
		return "", false
	}
	for _, lang := range languageChain(code) {
		for _, p := range naturalTables[lang] {
			for _, syn := range p.synonyms {
				if strings.Contains(lower, syn) {
					return p.concept, true
				}
			}
		}
	}
	return "", false
}
