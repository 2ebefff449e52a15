package fixed

// Bounds outside which Exp short-circuits. e^44 exceeds Max and e^-46 is
// below the smallest positive I64F64 (2^-64). Results between e^43.67 and
// e^44 are caught by the final range check.
var (
	expOverflow  = FromInt(44)
	expUnderflow = FromInt(-46)
)

// maxTerms caps the Taylor series. For r in [0, ln2) the terms reach zero
// well before this.
const maxTerms = 64

// Exp returns e^x. The computation is integer-only and bit-for-bit
// reproducible: x is reduced to k·ln2 + r with 0 <= r < ln2, e^r is summed
// as a Taylor series until the next term rounds to zero, and the sum is
// scaled by 2^k. Results smaller than 2^-64 are zero. ok is false when the
// result exceeds Max.
func Exp(x I64F64) (I64F64, bool) {
	switch {
	case x.IsZero():
		return One, true
	case x.GreaterThan(expOverflow):
		return Zero, false
	case x.LessThan(expUnderflow):
		return Zero, true
	}

	q, _ := x.CheckedDiv(Ln2)
	k := q.Floor()
	kln2, _ := FromInt(k).CheckedMul(Ln2)
	r, _ := x.CheckedSub(kln2)
	if r.IsNegative() {
		k--
		r, _ = r.CheckedAdd(Ln2)
	}

	sum, term := One, One
	for n := int64(1); n <= maxTerms; n++ {
		term, _ = term.CheckedMul(r)
		term, _ = term.CheckedDiv(FromInt(n))
		if term.IsZero() {
			break
		}
		sum, _ = sum.CheckedAdd(term)
	}

	return sum.shift(k)
}

// shift returns x·2^k for a non-negative x.
func (x I64F64) shift(k int64) (I64F64, bool) {
	var z I64F64
	switch {
	case k == 0:
		return x, true
	case k < 0:
		if -k >= 128 {
			return Zero, true
		}
		z.v.Rsh(&x.v, uint(-k))
		return z, true
	default:
		if k >= 64 {
			return Zero, false
		}
		z.v.Lsh(&x.v, uint(k))
		return z, z.inRange()
	}
}
