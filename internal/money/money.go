// Package money parses and formats Brazilian Real currency strings.
//
// Values travel through the system as display strings ("R$ 1.234,56"),
// the same form the professional dictates and the client sees. Parsing
// is deliberately forgiving: anything that is not a digit or a decimal
// comma is ignored.
package money

import (
	"strconv"
	"strings"
)

// Parse extracts a numeric value from a pt-BR currency string.
// "R$ 1.234,56" parses to 1234.56. Unparseable input yields 0.
func Parse(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	// Only the first comma is the decimal separator.
	if i := strings.IndexByte(cleaned, ','); i >= 0 {
		cleaned = cleaned[:i] + "." + strings.ReplaceAll(cleaned[i+1:], ",", "")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// Format renders a value as pt-BR currency: "R$ 1.234,56".
func Format(v float64) string {
	cents := int64(v*100 + 0.5)
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	b.WriteString("R$ ")
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// Sum parses each value and formats the total.
func Sum(values ...string) string {
	var total float64
	for _, v := range values {
		total += Parse(v)
	}
	return Format(total)
}
