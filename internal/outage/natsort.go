package outage

import (
	"sort"
	"strconv"
	"unicode"
)

// SortNatural sorts s so that embedded numbers compare by value:
// "2" < "10", "12" < "12А" < "13".
func SortNatural(s []string) {
	sort.SliceStable(s, func(i, j int) bool { return naturalLess(s[i], s[j]) })
}

func naturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xn != yn {
				return xn < yn
			}
		case xerr == nil:
			return true
		case yerr == nil:
			return false
		default:
			if x != y {
				return x < y
			}
		}
	}
	return len(ca) < len(cb)
}

// chunks splits s into alternating runs of digits and non-digits.
func chunks(s string) []string {
	var out []string
	var cur []rune
	digit := false
	for _, r := range s {
		d := unicode.IsDigit(r)
		if len(cur) > 0 && d != digit {
			out = append(out, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
		digit = d
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
