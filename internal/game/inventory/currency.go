package inventory

import (
	"strconv"
	"strings"
)

// FormatInkDrops renders a currency amount with thousands separators,
// e.g. "1,250 Ink Drops".
func FormatInkDrops(n int) string {
	unit := "Ink Drops"
	if n == 1 {
		unit = "Ink Drop"
	}
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " " + unit
}
