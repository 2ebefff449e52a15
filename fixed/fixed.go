// Package fixed provides I64F64, a signed 128-bit fixed-point number with 64
// fractional bits, and the deterministic exponential used for demurrage.
//
// Values are stored as two's-complement bits in a 256-bit word so that
// multiplication and division never lose intermediate precision. Every
// arithmetic operation is checked: it returns ok=false instead of wrapping.
// No floating point is used on any arithmetic path.
package fixed

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// FracBits is the number of fractional bits of an I64F64.
const FracBits = 64

// I64F64 is a signed fixed-point number with 64 integer bits (including the
// sign) and 64 fractional bits. The zero value is 0. I64F64 is a comparable
// value type.
type I64F64 struct {
	v uint256.Int
}

var (
	// Zero is 0.
	Zero = I64F64{}

	// One is 1.
	One = FromInt(1)

	// Ln2 is ln(2) rounded down to 64 fractional bits.
	Ln2 = FromBits(0, 0xB17217F7D1CF79AB)

	// Max is the largest representable value, 2^63 - 2^-64.
	Max = FromBits(1<<63-1, ^uint64(0))

	// Min is the smallest representable value, -2^63.
	Min = FromBits(-1<<63, 0)
)

// FromInt returns n as an I64F64. Every int64 is representable.
func FromInt(n int64) I64F64 {
	var x I64F64
	if n < 0 {
		x.v.SetUint64(uint64(-n))
		x.v.Lsh(&x.v, FracBits)
		x.v.Neg(&x.v)
		return x
	}
	x.v.SetUint64(uint64(n))
	x.v.Lsh(&x.v, FracBits)
	return x
}

// FromBits builds a value from its raw two's-complement representation:
// hi holds the integer part and lo the fraction.
func FromBits(hi int64, lo uint64) I64F64 {
	var x I64F64
	x.v[0] = lo
	x.v[1] = uint64(hi)
	if hi < 0 {
		x.v[2] = ^uint64(0)
		x.v[3] = ^uint64(0)
	}
	return x
}

// Bits returns the raw two's-complement representation of x.
func (x I64F64) Bits() (hi int64, lo uint64) {
	return int64(x.v[1]), x.v[0]
}

// FromRatio returns num/den truncated toward zero. ok is false when den is
// zero or the quotient is out of range.
func FromRatio(num, den int64) (I64F64, bool) {
	return FromInt(num).CheckedDiv(FromInt(den))
}

// ──────────────────────────────────────────────────
// Predicates and comparison
// ──────────────────────────────────────────────────

// IsZero reports whether x == 0.
func (x I64F64) IsZero() bool { return x.v.IsZero() }

// IsNegative reports whether x < 0.
func (x I64F64) IsNegative() bool { return x.v[3]>>63 == 1 }

// IsPositive reports whether x > 0.
func (x I64F64) IsPositive() bool { return !x.IsZero() && !x.IsNegative() }

// Cmp returns -1, 0 or +1 depending on whether x is less than, equal to or
// greater than y.
func (x I64F64) Cmp(y I64F64) int {
	switch {
	case x.v.Slt(&y.v):
		return -1
	case x.v.Sgt(&y.v):
		return 1
	default:
		return 0
	}
}

// Equal reports whether x == y.
func (x I64F64) Equal(y I64F64) bool { return x.v.Eq(&y.v) }

// LessThan reports whether x < y.
func (x I64F64) LessThan(y I64F64) bool { return x.Cmp(y) < 0 }

// GreaterThan reports whether x > y.
func (x I64F64) GreaterThan(y I64F64) bool { return x.Cmp(y) > 0 }

// Min returns the smaller of x and y.
func (x I64F64) Min(y I64F64) I64F64 {
	if y.LessThan(x) {
		return y
	}
	return x
}

// Max returns the larger of x and y.
func (x I64F64) Max(y I64F64) I64F64 {
	if y.GreaterThan(x) {
		return y
	}
	return x
}

// ──────────────────────────────────────────────────
// Checked arithmetic
// ──────────────────────────────────────────────────

// CheckedAdd returns x + y, or ok=false if the sum is out of range.
func (x I64F64) CheckedAdd(y I64F64) (I64F64, bool) {
	var z I64F64
	z.v.Add(&x.v, &y.v)
	return z, z.inRange()
}

// CheckedSub returns x - y, or ok=false if the difference is out of range.
func (x I64F64) CheckedSub(y I64F64) (I64F64, bool) {
	var z I64F64
	z.v.Sub(&x.v, &y.v)
	return z, z.inRange()
}

// CheckedNeg returns -x. It fails only for Min.
func (x I64F64) CheckedNeg() (I64F64, bool) {
	var z I64F64
	z.v.Neg(&x.v)
	return z, z.inRange()
}

// CheckedAbs returns |x|. It fails only for Min.
func (x I64F64) CheckedAbs() (I64F64, bool) {
	if x.IsNegative() {
		return x.CheckedNeg()
	}
	return x, true
}

// CheckedMul returns x * y rounded toward negative infinity, or ok=false if
// the product is out of range.
func (x I64F64) CheckedMul(y I64F64) (I64F64, bool) {
	a, an := x.magnitude()
	b, bn := y.magnitude()

	// |x|,|y| <= 2^127, so the full product fits in 256 bits.
	var p, q uint256.Int
	p.Mul(&a, &b)
	q.Rsh(&p, FracBits)

	negative := an != bn
	if negative && p[0] != 0 {
		q.AddUint64(&q, 1)
	}
	return fromMagnitude(q, negative)
}

// CheckedDiv returns x / y truncated toward zero, or ok=false if y is zero
// or the quotient is out of range.
func (x I64F64) CheckedDiv(y I64F64) (I64F64, bool) {
	if y.IsZero() {
		return Zero, false
	}
	a, an := x.magnitude()
	b, bn := y.magnitude()

	// |x| <= 2^127, so |x| << 64 fits in 256 bits.
	var n, q uint256.Int
	n.Lsh(&a, FracBits)
	q.Div(&n, &b)
	return fromMagnitude(q, an != bn)
}

// Floor returns the largest integer not greater than x.
func (x I64F64) Floor() int64 {
	hi, _ := x.Bits()
	return hi
}

// magnitude returns |x| as an unsigned 256-bit integer and the sign of x.
func (x I64F64) magnitude() (uint256.Int, bool) {
	if x.IsNegative() {
		var m uint256.Int
		m.Neg(&x.v)
		return m, true
	}
	return x.v, false
}

func fromMagnitude(m uint256.Int, negative bool) (I64F64, bool) {
	// Magnitudes above 2^128 cannot survive the range check after negation.
	if m[3] != 0 || m[2] != 0 {
		return Zero, false
	}
	z := I64F64{v: m}
	if negative {
		z.v.Neg(&z.v)
	}
	return z, z.inRange()
}

// inRange reports whether the 256-bit word holds a sign-extended 128-bit
// value.
func (x I64F64) inRange() bool {
	var ext uint64
	if x.v[1]>>63 == 1 {
		ext = ^uint64(0)
	}
	return x.v[2] == ext && x.v[3] == ext
}

// ──────────────────────────────────────────────────
// Storage encoding
// ──────────────────────────────────────────────────

// Hex returns the 128-bit two's-complement representation of x as 32
// lowercase hexadecimal digits. It is the storage form of an I64F64 and
// round-trips exactly through ParseHex.
func (x I64F64) Hex() string {
	return fmt.Sprintf("%016x%016x", x.v[1], x.v[0])
}

// ParseHex parses the output of Hex.
func ParseHex(s string) (I64F64, error) {
	if len(s) != 32 {
		return Zero, fmt.Errorf("fixed: parse hex %q: want 32 digits, got %d", s, len(s))
	}
	hi, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return Zero, fmt.Errorf("fixed: parse hex %q: %w", s, err)
	}
	lo, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return Zero, fmt.Errorf("fixed: parse hex %q: %w", s, err)
	}
	return FromBits(int64(hi), lo), nil
}
