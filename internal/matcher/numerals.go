package matcher

var cjkDigits = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseCJKNumeral reads Chinese/Japanese numerals below one thousand, e.g.
// "三", "十五", "二十", "一百零五"
func parseCJKNumeral(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	total, current := 0, -1
	for _, r := range s {
		if d, ok := cjkDigits[r]; ok {
			current = d
			continue
		}

		var scale int
		switch r {
		case '十':
			scale = 10
		case '百':
			scale = 100
		default:
			return 0, false
		}
		if current < 0 {
			// a bare 十 means ten
			current = 1
		}
		total += current * scale
		current = -1
	}
	if current > 0 {
		total += current
	}
	return total, true
}
