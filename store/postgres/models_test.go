package postgres

import (
	"math"
	"testing"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

func TestBalanceModelMapping(t *testing.T) {
	mana := currency.NewID([]byte("mana"))
	account := id.NewAccountID()

	tests := []struct {
		name  string
		entry balance.Entry
	}{
		{"zero", balance.Zero},
		{"fractional", balance.Entry{Principal: fixed.MustParse("12.000000000000000001"), LastUpdate: 6_307_200}},
		{"negative", balance.Entry{Principal: fixed.MustParse("-0.5"), LastUpdate: 1}},
		{"max principal", balance.Entry{Principal: fixed.Max, LastUpdate: math.MaxInt64}},
		{"tick above int64", balance.Entry{Principal: fixed.One, LastUpdate: math.MaxUint64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := toBalanceModel(mana, account, tt.entry)
			if m.CurrencyID != mana.String() || m.AccountID != account.String() {
				t.Errorf("keys = %s/%s", m.CurrencyID, m.AccountID)
			}
			if len(m.Principal) != 32 {
				t.Errorf("principal %q is not 32 hex digits", m.Principal)
			}

			h, err := fromBalanceModel(m)
			if err != nil {
				t.Fatal(err)
			}
			if h.Entry != tt.entry {
				t.Errorf("got %+v, want %+v", h.Entry, tt.entry)
			}
			if h.Account.String() != account.String() {
				t.Errorf("account = %s", h.Account)
			}
		})
	}
}

func TestIssuanceModelMapping(t *testing.T) {
	e := balance.Entry{Principal: fixed.FromInt(1_000_000), LastUpdate: 42}
	m := toIssuanceModel(currency.NewID([]byte("gold")), e)

	got, err := fromIssuanceModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != e {
		t.Errorf("got %+v, want %+v", got, e)
	}
}

func TestCorruptRows(t *testing.T) {
	if _, err := fromBalanceModel(&balanceModel{AccountID: "not-an-id", Principal: fixed.One.Hex()}); err == nil {
		t.Error("expected error for malformed account id")
	}
	if _, err := fromIssuanceModel(&issuanceModel{Principal: "xyz"}); err == nil {
		t.Error("expected error for malformed principal")
	}
}
