package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

// ==================== Balance models ====================

// balanceModel stores one (currency, account) entry. Principal is the
// 32-digit two's complement hex encoding of the Q64.64 value, which round
// trips bit-exactly. LastUpdate keeps the uint64 tick's bit pattern.
type balanceModel struct {
	grove.BaseModel `grove:"table:demurrage_balances"`

	CurrencyID string    `grove:"currency_id,pk"`
	AccountID  string    `grove:"account_id,pk"`
	Principal  string    `grove:"principal"`
	LastUpdate int64     `grove:"last_update"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toBalanceModel(c currency.ID, account id.AccountID, e balance.Entry) *balanceModel {
	return &balanceModel{
		CurrencyID: c.String(),
		AccountID:  account.String(),
		Principal:  e.Principal.Hex(),
		LastUpdate: int64(e.LastUpdate), //nolint:gosec // bit pattern preserved
		UpdatedAt:  now(),
	}
}

func fromBalanceModel(m *balanceModel) (balance.Holding, error) {
	account, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return balance.Holding{}, err
	}
	e, err := toEntry(m.Principal, m.LastUpdate)
	if err != nil {
		return balance.Holding{}, err
	}
	return balance.Holding{Account: account, Entry: e}, nil
}

// ==================== Issuance models ====================

type issuanceModel struct {
	grove.BaseModel `grove:"table:demurrage_issuance"`

	CurrencyID string    `grove:"currency_id,pk"`
	Principal  string    `grove:"principal"`
	LastUpdate int64     `grove:"last_update"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toIssuanceModel(c currency.ID, e balance.Entry) *issuanceModel {
	return &issuanceModel{
		CurrencyID: c.String(),
		Principal:  e.Principal.Hex(),
		LastUpdate: int64(e.LastUpdate), //nolint:gosec // bit pattern preserved
		UpdatedAt:  now(),
	}
}

func fromIssuanceModel(m *issuanceModel) (balance.Entry, error) {
	return toEntry(m.Principal, m.LastUpdate)
}

func toEntry(principal string, lastUpdate int64) (balance.Entry, error) {
	p, err := fixed.ParseHex(principal)
	if err != nil {
		return balance.Entry{}, err
	}
	return balance.Entry{Principal: p, LastUpdate: uint64(lastUpdate)}, nil //nolint:gosec // bit pattern preserved
}
