package fixed

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// 5^64: x·2^-64 == x·5^64·10^-64, which makes the decimal form exact.
	pow5 = new(big.Int).Exp(big.NewInt(5), big.NewInt(FracBits), nil)

	scale = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), FracBits), 0)
)

// Decimal returns the exact decimal value of x.
func (x I64F64) Decimal() decimal.Decimal {
	m, negative := x.magnitude()
	raw := m.ToBig()
	if negative {
		raw.Neg(raw)
	}
	return decimal.NewFromBigInt(raw.Mul(raw, pow5), -FracBits)
}

// FromDecimal converts d to the nearest I64F64 not greater than d. ok is
// false if d is out of range.
func FromDecimal(d decimal.Decimal) (I64F64, bool) {
	raw := d.Mul(scale).Floor().BigInt()

	negative := raw.Sign() < 0
	if negative {
		raw.Neg(raw)
	}
	m, overflow := uint256.FromBig(raw)
	if overflow {
		return Zero, false
	}
	return fromMagnitude(*m, negative)
}

// Parse parses a decimal string such as "100", "-0.25" or "1e-3".
func Parse(s string) (I64F64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("fixed: parse %q: %w", s, err)
	}
	x, ok := FromDecimal(d)
	if !ok {
		return Zero, fmt.Errorf("fixed: parse %q: out of range", s)
	}
	return x, nil
}

// MustParse is like Parse but panics on error. Use for constants.
func MustParse(s string) I64F64 {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

// String returns the exact decimal representation of x.
func (x I64F64) String() string {
	return x.Decimal().String()
}

// StringFixed returns x rounded half away from zero to the given number of
// decimal places.
func (x I64F64) StringFixed(places int32) string {
	return x.Decimal().StringFixed(places)
}

// Float64 returns the nearest float64 to x. It is meant for display and
// tolerance checks only.
func (x I64F64) Float64() float64 {
	return x.Decimal().InexactFloat64()
}

// MarshalText implements encoding.TextMarshaler.
func (x I64F64) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *I64F64) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}

// MarshalJSON encodes x as a quoted decimal string so that no precision is
// lost in JSON number handling.
func (x I64F64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (x *I64F64) UnmarshalJSON(data []byte) error {
	return x.UnmarshalText(bytes.Trim(data, `"`))
}
