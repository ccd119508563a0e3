package model

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ParseAmount coerces a raw form value to a number the way a browser-side
// Number() would: surrounding whitespace is ignored, an empty value is 0,
// 0x/0o/0b prefixed integers are accepted and anything else that is not a
// plain decimal literal is NaN.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.Contains(s, "_") {
				return math.NaN()
			}
			n, err := strconv.ParseUint(s[2:], base, 64)
			if errors.Is(err, strconv.ErrRange) {
				return parseWideInt(s[2:], base)
			}
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	// strconv is more lenient than Number(): it knows "inf", "nan" and
	// digit separators.
	if strings.ContainsAny(strings.ToLower(s), "in_") {
		return math.NaN()
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals still overflow to an infinity or zero.
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

// parseWideInt converts an integer literal wider than 64 bits to the
// nearest float.
func parseWideInt(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// FormatAmount renders v with exactly two fraction digits. Exact halves
// round away from zero, NaN renders as "NaN" and infinities as
// "Infinity"/"-Infinity".
func FormatAmount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0.00"
	case math.Abs(v) >= 1e21:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	// A value that lies exactly between two cents is a multiple of 1/8
	// with an odd numerator; strconv would round it to even. Its three
	// digit form is exact, so the rounding is done on the digits.
	if eighths := v * 8; eighths == math.Trunc(eighths) && math.Mod(math.Abs(eighths), 2) == 1 {
		exact := strconv.FormatFloat(math.Abs(v), 'f', 3, 64)
		rounded := roundUpLastDigit(exact[:len(exact)-1])
		if v < 0 {
			return "-" + rounded
		}
		return rounded
	}

	return strconv.FormatFloat(v, 'f', 2, 64)
}

// roundUpLastDigit adds one unit in the last place of a non-negative
// decimal string, carrying through the point.
func roundUpLastDigit(s string) string {
	digits := []byte(s)
	for i := len(digits) - 1; i >= 0; i-- {
		switch digits[i] {
		case '.':
			continue
		case '9':
			digits[i] = '0'
		default:
			digits[i]++
			return string(digits)
		}
	}
	return "1" + string(digits)
}
