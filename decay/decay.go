// Package decay applies continuous exponential demurrage to balance entries.
//
// A principal p last updated at tick t0 is worth p·e^(-rate·(now-t0)) at
// tick now. Peek computes that value without side effects; Materialize also
// moves the entry's timestamp to now so the caller can persist it.
//
// The functions panic when the host breaks a precondition (time moving
// backwards, a negative rate) or when arithmetic overflows. These are
// invariant violations, not recoverable errors: a ledger must never persist a
// wrapped or saturated value.
package decay

import (
	"fmt"
	"math"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/fixed"
)

// MaxElapsed is the largest number of ticks a single decay step accepts.
const MaxElapsed = math.MaxUint32

// Factor returns e^(-rate·dt), a value in [0, 1]. A zero rate or zero dt
// yields One for any dt.
func Factor(rate fixed.I64F64, dt uint64) fixed.I64F64 {
	if rate.IsNegative() {
		panic(fmt.Sprintf("decay: negative rate %s", rate))
	}
	if dt == 0 || rate.IsZero() {
		return fixed.One
	}
	if dt > MaxElapsed {
		panic(fmt.Sprintf("decay: elapsed %d ticks exceeds %d", dt, uint64(MaxElapsed)))
	}

	exponent, ok := rate.CheckedMul(fixed.FromInt(int64(dt)))
	if !ok {
		panic(fmt.Sprintf("decay: exponent overflow for rate %s over %d ticks", rate, dt))
	}
	exponent, _ = exponent.CheckedNeg()

	factor, ok := fixed.Exp(exponent)
	if !ok {
		panic(fmt.Sprintf("decay: exp overflow for exponent %s", exponent))
	}
	return factor
}

// Peek returns the principal of e decayed to now.
func Peek(e balance.Entry, rate fixed.I64F64, now uint64) fixed.I64F64 {
	if now < e.LastUpdate {
		panic(fmt.Sprintf("decay: now %d is before last update %d", now, e.LastUpdate))
	}
	if e.Principal.IsZero() {
		return e.Principal
	}
	factor := Factor(rate, now-e.LastUpdate)
	if factor.Equal(fixed.One) {
		return e.Principal
	}

	p, ok := e.Principal.CheckedMul(factor)
	if !ok {
		panic(fmt.Sprintf("decay: principal %s overflowed applying factor %s", e.Principal, factor))
	}
	return p
}

// Materialize returns e decayed to now with LastUpdate set to now.
func Materialize(e balance.Entry, rate fixed.I64F64, now uint64) balance.Entry {
	return balance.Entry{
		Principal:  Peek(e, rate, now),
		LastUpdate: now,
	}
}
