package slug

import (
	"strings"
	"unicode"
)

// Make lowercases s and joins its letter/digit runs with single dashes,
// e.g. "Real Madrid 24/25 Home" -> "real-madrid-24-25-home".
func Make(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
