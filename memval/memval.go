// Package memval parses memory value expressions such as "1.5g", "64k" or
// "4096" into exact byte counts.
//
// A memory value is a decimal mantissa (digits with at most one '.' or ','
// separator) followed by at most one magnitude suffix: g, m, k or b, case
// insensitive. Digits after the separator are a true decimal fraction of the
// mantissa, applied independently of the suffix, and the result is
// truncated to whole bytes.
package memval

import (
	"errors"
	"fmt"
	"math/big"
)

// Units selects how magnitude suffixes are scaled.
type Units string

const (
	// Binary scales g/m/k by 2^30, 2^20 and 2^10.
	Binary Units = "binary"
	// Decimal scales g/m/k by 10^9, 10^6 and 10^3.
	Decimal Units = "decimal"
)

// ParseUnits parses a units name. Empty means Binary.
func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case "", Binary:
		return Binary, nil
	case Decimal:
		return Decimal, nil
	default:
		return "", fmt.Errorf("invalid units: %q (must be binary or decimal)", s)
	}
}

// ErrInvalid is matched by every parse failure via errors.Is.
var ErrInvalid = errors.New("invalid memory value")

// ParseError reports a memory value that could not be parsed.
type ParseError struct {
	// Text is the full input.
	Text string
	// Pos is the byte offset of the offending character, or -1 when the
	// failure is not tied to one character.
	Pos int
	// Reason describes the failure.
	Reason string
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("memory value %q cannot be parsed: %s at offset %d", e.Text, e.Reason, e.Pos)
	}
	return fmt.Sprintf("memory value %q cannot be parsed: %s", e.Text, e.Reason)
}

// Is reports whether target is ErrInvalid.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalid
}

// Parse parses text with binary suffix scaling.
func Parse(text string) (int64, error) {
	return ParseWithUnits(text, Binary)
}

// ParseWithUnits parses text with the given suffix scaling.
func ParseWithUnits(text string, units Units) (int64, error) {
	fail := func(pos int, reason string) (int64, error) {
		return 0, &ParseError{Text: text, Pos: pos, Reason: reason}
	}

	if text == "" {
		return fail(-1, "empty value")
	}

	value := new(big.Int)
	ten := big.NewInt(10)
	fracDigits := -1
	exponent := -1
	digits := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch >= '0' && ch <= '9':
			if exponent != -1 {
				return fail(i, "digit after suffix")
			}
			value.Mul(value, ten)
			value.Add(value, big.NewInt(int64(ch-'0')))
			if fracDigits != -1 {
				fracDigits++
			}
			digits++

		case ch == '.' || ch == ',':
			if fracDigits != -1 {
				return fail(i, "second decimal point")
			}
			if exponent != -1 {
				return fail(i, "decimal point after suffix")
			}
			fracDigits = 0

		default:
			exp, ok := suffixExponent(ch)
			if !ok {
				return fail(i, fmt.Sprintf("unexpected character %q", ch))
			}
			if exponent != -1 {
				return fail(i, "second suffix")
			}
			exponent = exp
		}
	}

	if digits == 0 {
		return fail(-1, "no digits")
	}

	if exponent > 0 {
		value.Mul(value, scale(units, exponent))
	}
	if fracDigits > 0 {
		divisor := new(big.Int).Exp(ten, big.NewInt(int64(fracDigits)), nil)
		value.Quo(value, divisor)
	}

	if !value.IsInt64() {
		return fail(-1, "value overflows 64 bits")
	}
	return value.Int64(), nil
}

// suffixExponent maps a suffix letter to its power-of-two exponent.
func suffixExponent(ch byte) (int, bool) {
	switch ch {
	case 'g', 'G':
		return 30, true
	case 'm', 'M':
		return 20, true
	case 'k', 'K':
		return 10, true
	case 'b', 'B':
		return 0, true
	default:
		return 0, false
	}
}

// scale returns the multiplier for a binary exponent under the given units.
// Decimal units map 2^10 to 10^3, 2^20 to 10^6 and 2^30 to 10^9.
func scale(units Units, exponent int) *big.Int {
	if units == Decimal {
		return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exponent/10*3)), nil)
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(exponent))
}

// Format renders n bytes as the shortest exact memory value under binary
// units, e.g. 1073741824 as "1g" and 1536 as "1536".
func Format(n int64) string {
	switch {
	case n > 0 && n%(1<<30) == 0:
		return fmt.Sprintf("%dg", n>>30)
	case n > 0 && n%(1<<20) == 0:
		return fmt.Sprintf("%dm", n>>20)
	case n > 0 && n%(1<<10) == 0:
		return fmt.Sprintf("%dk", n>>10)
	default:
		return fmt.Sprintf("%d", n)
	}
}
