package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f as the shortest decimal text that round-trips,
// switching to exponent notation below 1e-6 and from 1e21 upward.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Covers negative zero.
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseEntry reads the numeric value of an entry being typed. Partial
// entries such as "", "." or "-" read as 0.
func parseEntry(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f
		}
		return 0
	}
	return f
}

// digitCount counts the digits of an entry, ignoring sign and point.
func digitCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
