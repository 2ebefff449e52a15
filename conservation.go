package demurrage

import (
	"context"

	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/decay"
	"github.com/xraph/demurrage/fixed"
)

// Conservation compares a currency's decayed total issuance with the sum of
// its decayed balances at one tick. Each entry rounds independently, so a
// small Drift is expected; it grows at most by a few ulps per account.
type Conservation struct {
	Currency currency.ID  `json:"currency"`
	Block    uint64       `json:"block"`
	Issuance fixed.I64F64 `json:"issuance"`
	Sum      fixed.I64F64 `json:"sum"`
	Drift    fixed.I64F64 `json:"drift"`
	Accounts int          `json:"accounts"`
}

// Within reports whether Drift does not exceed tolerance.
func (c Conservation) Within(tolerance fixed.I64F64) bool {
	return !c.Drift.GreaterThan(tolerance)
}

// CheckConservation sums every decayed balance of c and compares it with the
// decayed total issuance. It writes nothing.
func (l *Ledger) CheckConservation(ctx context.Context, c currency.ID) (Conservation, error) {
	now := l.clock.Now()
	rate := l.registry.RateOf(c)

	totEntry, err := l.loadIssuance(ctx, c)
	if err != nil {
		return Conservation{}, err
	}
	holdings, err := l.store.ListBalances(ctx, c)
	if err != nil {
		return Conservation{}, err
	}

	report := Conservation{
		Currency: c,
		Block:    now,
		Issuance: decay.Peek(totEntry, rate, now),
		Accounts: len(holdings),
	}

	sum := fixed.Zero
	for _, h := range holdings {
		var ok bool
		sum, ok = sum.CheckedAdd(decay.Peek(h.Entry, rate, now))
		if !ok {
			return Conservation{}, ErrBalanceOverflow
		}
	}
	report.Sum = sum

	diff, ok := report.Issuance.CheckedSub(sum)
	if !ok {
		return Conservation{}, ErrBalanceOverflow
	}
	report.Drift, _ = diff.CheckedAbs()
	return report, nil
}
