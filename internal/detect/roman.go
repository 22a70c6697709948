package detect

import "strings"

var romanValues = map[rune]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// IsRomanSymbol reports whether r is one of I, V, X, L, C, D, M (either case).
func IsRomanSymbol(r rune) bool {
	_, ok := romanValues[toUpperASCII(r)]
	return ok
}

// RomanToInt converts a Roman numeral using right-to-left accumulation: a
// symbol smaller than the one to its right is subtracted. Non-canonical
// forms such as "IIII" are accepted.
func RomanToInt(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	runes := []rune(s)
	total, prev := 0, 0
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := romanValues[runes[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, total > 0
}

// IntToRoman renders n (1..3999) in canonical subtractive notation.
func IntToRoman(n int) (string, bool) {
	if n <= 0 || n >= 4000 {
		return "", false
	}
	steps := []struct {
		value  int
		symbol string
	}{
		{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
		{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
		{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
	}
	var b strings.Builder
	for _, st := range steps {
		for n >= st.value {
			b.WriteString(st.symbol)
			n -= st.value
		}
	}
	return b.String(), true
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
