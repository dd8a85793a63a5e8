// Package grade parses and formats exam grades as students type them:
// locale-formatted strings with a decimal comma ("7,5") or dot ("7.5").
package grade

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// leadingFloat matches the longest numeric prefix a lenient float parser
// accepts: optional sign, digits with an optional fraction, optional exponent.
var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Parse returns the numeric value of raw, or NaN when raw is empty or does not
// start with a number. The first comma is read as the decimal separator and
// trailing garbage after the numeric prefix is ignored, so "7,5 (rec)" is 7.5.
// Parse never fails; callers check math.IsNaN.
func Parse(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN()
	}
	s = strings.Replace(s, ",", ".", 1)

	m := leadingFloat.FindString(s)
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Present reports whether raw parses to a number.
func Present(raw string) bool {
	return !math.IsNaN(Parse(raw))
}

var printer = message.NewPrinter(language.MustParse("es-AR"))

// Format renders v with two decimals and a decimal comma ("7,50").
// NaN renders as an em dash placeholder.
func Format(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return printer.Sprintf("%.2f", v)
}

// Round2 rounds v to two decimal places, half away from zero for positive
// values the way grade averages are shown.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// RoundHalfUp rounds v to the nearest integer, with halves rounded up.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
