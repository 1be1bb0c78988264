package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DollarsToCents converts a dollar amount typed into a form to the integer
// cents stored in the database, rounding to the nearest cent.
func DollarsToCents(d float64) int64 {
	return int64(math.Round(d * 100))
}

// CentsToDollars is the inverse of DollarsToCents.
func CentsToDollars(c int64) float64 {
	return float64(c) / 100
}

// FormatCurrency renders cents as US dollars, e.g. 123456 -> "$1,234.56".
func FormatCurrency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// FormatDateToLocal renders a date the way the listing tables show it,
// e.g. "Dec 6, 2022".
func FormatDateToLocal(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatRate renders part/total with three decimals. A zero total yields "0".
func FormatRate(part, total int64) string {
	if total <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(part)/float64(total), 'f', 3, 64)
}
