package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

// ==================== Balance models ====================

// balanceModel is keyed by "<currency>:<account>". Principal uses the
// bit-exact hex encoding; LastUpdate keeps the tick's bit pattern because
// BSON has no unsigned 64-bit integer.
type balanceModel struct {
	grove.BaseModel `grove:"table:demurrage_balances"`

	ID         string    `grove:"id,pk"        bson:"_id"`
	CurrencyID string    `grove:"currency_id"  bson:"currency_id"`
	AccountID  string    `grove:"account_id"   bson:"account_id"`
	Principal  string    `grove:"principal"    bson:"principal"`
	LastUpdate int64     `grove:"last_update"  bson:"last_update"`
	UpdatedAt  time.Time `grove:"updated_at"   bson:"updated_at"`
}

func balanceKey(c currency.ID, account id.AccountID) string {
	return c.String() + ":" + account.String()
}

func toBalanceModel(c currency.ID, account id.AccountID, e balance.Entry) *balanceModel {
	return &balanceModel{
		ID:         balanceKey(c, account),
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

	ID         string    `grove:"id,pk"        bson:"_id"`
	Principal  string    `grove:"principal"    bson:"principal"`
	LastUpdate int64     `grove:"last_update"  bson:"last_update"`
	UpdatedAt  time.Time `grove:"updated_at"   bson:"updated_at"`
}

func toIssuanceModel(c currency.ID, e balance.Entry) *issuanceModel {
	return &issuanceModel{
		ID:         c.String(),
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
