package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var units = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
}

var tens = [...]string{
	"", "", "vingt", "trente", "quarante", "cinquante", "soixante",
}

type scale struct {
	value    int64
	singular string
	plural   string
}

var scales = []scale{
	{1_000_000_000, "milliard", "milliards"},
	{1_000_000, "million", "millions"},
}

// AmountInWords spells an integer amount in French, capitalized, e.g.
// 71 -> "Soixante-et-onze", 80 -> "Quatre-vingts", 0 -> "Zéro".
func AmountInWords(amount int64) string {
	var out string
	switch {
	case amount == 0:
		out = units[0]
	case amount < 0:
		// -amount overflows for MinInt64; spell its magnitude as uint64
		out = "moins " + spell(uint64(-(amount+1))+1)
	default:
		out = spell(uint64(amount))
	}
	return capitalize(strings.Join(strings.Fields(out), " "))
}

func spell(n uint64) string {
	var parts []string

	for _, s := range scales {
		v := uint64(s.value)
		if n < v {
			continue
		}
		q := n / v
		n %= v
		word := s.singular
		if q > 1 {
			word = s.plural
		}
		parts = append(parts, spell(q), word)
	}

	if n >= 1000 {
		q := n / 1000
		n %= 1000
		if q > 1 {
			// the group before "mille" never takes a plural mark
			parts = append(parts, belowThousand(int(q), false))
		}
		parts = append(parts, "mille")
	}

	if n > 0 {
		parts = append(parts, belowThousand(int(n), true))
	}
	return strings.Join(parts, " ")
}

// belowThousand spells 1..999. final is false when another word follows,
// which removes the plural "s" of "cents" and "quatre-vingts".
func belowThousand(n int, final bool) string {
	h, r := n/100, n%100

	var parts []string
	switch {
	case h == 1:
		parts = append(parts, "cent")
	case h > 1:
		word := units[h] + " cent"
		if r == 0 && final {
			word += "s"
		}
		parts = append(parts, word)
	}
	if r > 0 {
		parts = append(parts, belowHundred(r, final))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int, final bool) string {
	switch {
	case n <= 16:
		return units[n]
	case n < 20:
		return "dix-" + units[n-10]
	case n < 70:
		t, u := n/10, n%10
		switch u {
		case 0:
			return tens[t]
		case 1:
			return tens[t] + "-et-un"
		default:
			return tens[t] + "-" + units[u]
		}
	case n < 80:
		if n == 71 {
			return "soixante-et-onze"
		}
		return "soixante-" + belowHundred(n-60, true)
	default:
		if n == 80 {
			if final {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + belowHundred(n-80, true)
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
