// Package units provides checked 256-bit arithmetic and decimal amount
// conversion for token and base-asset quantities.
package units

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// Decimals is the token's fractional precision.
	Decimals = 18
	// BaseDecimals is the base asset's fractional precision; one base unit
	// is a satoshi.
	BaseDecimals = 8
)

// One is 10^Decimals, the base-unit count of one whole token.
var One = Pow10(Decimals)

// Zero returns a new zero value.
func Zero() *uint256.Int { return new(uint256.Int) }

// U returns a new value holding v.
func U(v uint64) *uint256.Int { return uint256.NewInt(v) }

// Pow10 returns 10^n. n must be at most 77.
func Pow10(n uint) *uint256.Int {
	z := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint(0); i < n; i++ {
		z.Mul(z, ten)
	}
	return z
}

// Or returns v, or zero if v is nil.
func Or(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return v
}

// Add returns a+b.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return z, nil
}

// Sub returns a-b.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	if a.Lt(b) {
		return nil, fmt.Errorf("%w: %s - %s", ErrUnderflow, a, b)
	}
	return new(uint256.Int).Sub(a, b), nil
}

// Mul returns a*b.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s", ErrOverflow, a, b)
	}
	return z, nil
}

// MulDiv returns floor(x*y/d) using a 512-bit intermediate product.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s / %s", ErrOverflow, x, y, d)
	}
	return z, nil
}

// MulMod returns (x*y) mod d using a 512-bit intermediate product.
func MulMod(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).MulMod(x, y, d), nil
}

// Percent returns floor(x*pct/100).
func Percent(x *uint256.Int, pct uint64) (*uint256.Int, error) {
	return MulDiv(x, uint256.NewInt(pct), uint256.NewInt(100))
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a
	}
	return b
}

// ParseAmount parses a decimal string such as "12.5" into base units with
// the given number of fractional digits. Integer strings are scaled; more
// fractional digits than decimals is an error.
func ParseAmount(s string, decimals uint) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if uint(len(frac)) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	return v, nil
}

// FormatAmount renders base units as a decimal string with the given
// fractional digits, trimming trailing zeros.
func FormatAmount(v *uint256.Int, decimals uint) string {
	s := Or(v).Dec()
	if decimals == 0 {
		return s
	}
	if uint(len(s)) <= decimals {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	cut := len(s) - int(decimals)
	whole, frac := s[:cut], strings.TrimRight(s[cut:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
