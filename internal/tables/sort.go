package tables

import (
	"strings"
	"unicode"
)

// compareTableNumbers orders labels the way staff read them: digit runs
// compare numerically, everything else byte-wise, so T2 sorts before T10.
func compareTableNumbers(a, b string) int {
	ra, rb := []rune(strings.ToUpper(a)), []rune(strings.ToUpper(b))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			ia, na := readNumber(ra, i)
			ib, nb := readNumber(rb, j)
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			i, j = ia, ib
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(ra):
		return 1
	case j < len(rb):
		return -1
	default:
		return 0
	}
}

// readNumber consumes a digit run starting at pos, ignoring leading zeros.
func readNumber(rs []rune, pos int) (next int, value int64) {
	for pos < len(rs) && unicode.IsDigit(rs[pos]) {
		value = value*10 + int64(rs[pos]-'0')
		pos++
	}
	return pos, value
}
