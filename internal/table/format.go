package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Money formats an amount the es-CO way with two decimals: $1.234.567,89.
func Money(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	frac := cents % 100
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

const DateLayout = "2006-01-02"

// Date formats t as YYYY-MM-DD; the zero time is empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DatePtr is Date for optional values.
func DatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Date(*t)
}
