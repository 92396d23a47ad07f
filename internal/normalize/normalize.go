// Package normalize applies the house style to dictated text before it
// lands on a budget: uppercase, compact measurement notation and no
// connective filler between a measurement and the service name.
package normalize

import (
	"regexp"
	"strings"
)

// measureRe matches a number followed by a spoken measurement unit.
// The trailing group guards against text that is already in compact
// notation ("20M²", "15M2") and against unrelated words that merely
// start with an M unit prefix ("12 MADEIRAS").
var measureRe = regexp.MustCompile(`(\d+)\s*(METROS\s+QUADRADOS|METRO\s+QUADRADO|METROS|METRO|MT|M)(²|2|\p{L})?`)

// fillerRe drops the "DE" connective right after a rewritten
// measurement: "12M² DE PINTURA" reads as "12M² PINTURA".
var fillerRe = regexp.MustCompile(`(\d+M²)\s+DE\s+`)

// Description normalizes a dictated service description.
func Description(s string) string {
	s = strings.ToUpper(s)
	s = rewriteMeasurements(s)
	s = fillerRe.ReplaceAllString(s, "$1 ")
	return strings.TrimSpace(s)
}

// Name normalizes a dictated person or company name.
func Name(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func rewriteMeasurements(s string) string {
	return measureRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := measureRe.FindStringSubmatch(m)
		if sub[3] != "" {
			// Already compact, or the unit is the start of a longer
			// word. Leave it alone.
			return m
		}
		return sub[1] + "M²"
	})
}
