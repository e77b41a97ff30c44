// Package core holds the portfolio domain model and the pure business rules
// computed over it: status derivation, debt carry-forward, tenant
// apportionment and the comparative analytics shared by dashboard and
// reports.
//
// This file contains money parsing and handling. Charge amounts are kept
// cent-exact; floats appear only at the display and apportionment edges.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in centavos.
type Money struct {
	Cents int64
}

// Reais returns the amount in currency units as a float64, for display and
// for the apportionment output. Use cents for everything else.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseDecimalToCents converts a decimal string to centavos with half-up
// rounding on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. An empty
// string parses to zero: legacy rows and Em aberto units legitimately carry
// no amount. Negative values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("1234.56") -> 123456, nil
//	ParseDecimalToCents("1234,56") -> 123456, nil
//	ParseDecimalToCents("")        -> 0, nil
//	ParseDecimalToCents("12.344")  -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.345")  -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
