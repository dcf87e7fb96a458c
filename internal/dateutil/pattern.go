package dateutil

import (
	"strings"
	"sync"

	"github.com/nowwaveradio/smartdate/internal/locale"
)

// tokenKind identifies one element of a compiled pattern
type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokYear4
	tokYear2
	tokMonthLong
	tokMonthShort
	tokMonth2
	tokMonth
	tokDay2
	tokDay
	tokWeekdayLong
	tokWeekdayShort
	tokHour24Pad
	tokHour24
	tokHour12Pad
	tokHour12
	tokMinute2
	tokMinute
	tokSecond2
	tokSecond
	tokMeridiem
)

type token struct {
	kind    tokenKind
	literal string
}

// Pattern is a compiled date/time pattern such as "yyyy-MM-dd" or "EEEE, MMMM d yyyy"
type Pattern struct {
	raw    string
	tokens []token
}

// AIDEV-NOTE: Longest run wins; a run longer than any known token is clamped
// to the longest form (e.g. "yyyyy" behaves as "yyyy").
var runTokens = map[rune][]tokenKind{
	// index = run length - 1
	'y': {tokYear2, tokYear2, tokYear4, tokYear4},
	'M': {tokMonth, tokMonth2, tokMonthShort, tokMonthLong},
	'd': {tokDay, tokDay2},
	'E': {tokWeekdayShort, tokWeekdayShort, tokWeekdayShort, tokWeekdayLong},
	'H': {tokHour24, tokHour24Pad},
	'h': {tokHour12, tokHour12Pad},
	'm': {tokMinute, tokMinute2},
	's': {tokSecond, tokSecond2},
	'a': {tokMeridiem},
}

var (
	compiledMu sync.RWMutex
	compiled   = make(map[string]Pattern)
)

// Compile parses a pattern string. Text inside single quotes is literal and
// '' is an escaped quote. Compiled patterns are memoized.
func Compile(pattern string) Pattern {
	compiledMu.RLock()
	p, ok := compiled[pattern]
	compiledMu.RUnlock()
	if ok {
		return p
	}

	p = Pattern{raw: pattern, tokens: tokenize(pattern)}

	compiledMu.Lock()
	compiled[pattern] = p
	compiledMu.Unlock()
	return p
}

func tokenize(pattern string) []token {
	var tokens []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				lit.WriteRune('\'')
				i += 2
				continue
			}
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						lit.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				lit.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}

		kinds, ok := runTokens[r]
		if !ok {
			lit.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		flush()
		idx := n - 1
		if idx >= len(kinds) {
			idx = len(kinds) - 1
		}
		tokens = append(tokens, token{kind: kinds[idx]})
		i += n
	}
	flush()
	return tokens
}

// String returns the source pattern
func (p Pattern) String() string {
	return p.raw
}

// HasWeekday reports whether the pattern contains a weekday token
func (p Pattern) HasWeekday() bool {
	return p.has(tokWeekdayLong, tokWeekdayShort)
}

// HasDate reports whether the pattern contains any year, month or day token
func (p Pattern) HasDate() bool {
	return p.has(tokYear4, tokYear2, tokMonthLong, tokMonthShort, tokMonth2, tokMonth, tokDay2, tokDay)
}

// HasTime reports whether the pattern contains any clock token
func (p Pattern) HasTime() bool {
	return p.has(tokHour24Pad, tokHour24, tokHour12Pad, tokHour12, tokMinute2, tokMinute, tokSecond2, tokSecond)
}

// HasSeconds reports whether the pattern resolves seconds
func (p Pattern) HasSeconds() bool {
	return p.has(tokSecond2, tokSecond)
}

func (p Pattern) has(kinds ...tokenKind) bool {
	for _, t := range p.tokens {
		for _, k := range kinds {
			if t.kind == k {
				return true
			}
		}
	}
	return false
}

// WithoutWeekday returns the pattern with weekday tokens removed together with
// the separator literals that only served to set them apart
func (p Pattern) WithoutWeekday() Pattern {
	if !p.HasWeekday() {
		return p
	}

	out := make([]token, 0, len(p.tokens))
	for i := 0; i < len(p.tokens); i++ {
		t := p.tokens[i]
		if t.kind != tokWeekdayLong && t.kind != tokWeekdayShort {
			out = append(out, t)
			continue
		}

		removedBefore := false
		if n := len(out); n > 0 && out[n-1].kind == tokLiteral && isSeparatorLiteral(out[n-1].literal) {
			out = out[:n-1]
			removedBefore = true
		}
		removedAfter := false
		if i+1 < len(p.tokens) && p.tokens[i+1].kind == tokLiteral && isSeparatorLiteral(p.tokens[i+1].literal) {
			i++
			removedAfter = true
		}
		// "MMM d (EEE) yyyy" must not collapse into "MMM dyyyy"
		if removedBefore && removedAfter && len(out) > 0 && i+1 < len(p.tokens) {
			out = append(out, token{kind: tokLiteral, literal: " "})
		}
	}

	var raw strings.Builder
	for _, t := range out {
		raw.WriteString(t.source())
	}
	return Pattern{raw: raw.String(), tokens: out}
}

// Glob turns the pattern into a filepath.Match expression that matches any
// text it could format, e.g. "'app-'yyyyMMdd'.log'" becomes "app-*.log"
func (p Pattern) Glob() string {
	var b strings.Builder
	star := false
	for _, t := range p.tokens {
		if t.kind != tokLiteral {
			if !star {
				b.WriteByte('*')
				star = true
			}
			continue
		}
		star = false
		for _, r := range t.literal {
			if strings.ContainsRune(`*?[\`, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSeparatorLiteral(s string) bool {
	return strings.Trim(s, weekdaySeparators) == ""
}

const weekdaySeparators = " ,()\u3000\uff08\uff09\u3001\uff0c"

// source renders the token back into pattern syntax
func (t token) source() string {
	switch t.kind {
	case tokLiteral:
		if strings.ContainsAny(t.literal, "yMdEHhmsa'") {
			return "'" + strings.ReplaceAll(t.literal, "'", "''") + "'"
		}
		return t.literal
	case tokYear4:
		return "yyyy"
	case tokYear2:
		return "yy"
	case tokMonthLong:
		return "MMMM"
	case tokMonthShort:
		return "MMM"
	case tokMonth2:
		return "MM"
	case tokMonth:
		return "M"
	case tokDay2:
		return "dd"
	case tokDay:
		return "d"
	case tokWeekdayLong:
		return "EEEE"
	case tokWeekdayShort:
		return "EEE"
	case tokHour24Pad:
		return "HH"
	case tokHour24:
		return "H"
	case tokHour12Pad:
		return "hh"
	case tokHour12:
		return "h"
	case tokMinute2:
		return "mm"
	case tokMinute:
		return "m"
	case tokSecond2:
		return "ss"
	case tokSecond:
		return "s"
	case tokMeridiem:
		return "a"
	}
	return ""
}

// Order reports the numeric ordering of year, month and day in the pattern.
// ok is false when the pattern does not carry all three.
func (p Pattern) Order() (locale.Order, bool) {
	yi, mi, di := -1, -1, -1
	for i, t := range p.tokens {
		switch t.kind {
		case tokYear4, tokYear2:
			if yi < 0 {
				yi = i
			}
		case tokMonthLong, tokMonthShort, tokMonth2, tokMonth:
			if mi < 0 {
				mi = i
			}
		case tokDay2, tokDay:
			if di < 0 {
				di = i
			}
		}
	}
	if yi < 0 || mi < 0 || di < 0 {
		return locale.OrderYMD, false
	}
	switch {
	case yi < mi && mi < di:
		return locale.OrderYMD, true
	case mi < di && di < yi:
		return locale.OrderMDY, true
	case di < mi && mi < yi:
		return locale.OrderDMY, true
	}
	return locale.OrderYMD, true
}
