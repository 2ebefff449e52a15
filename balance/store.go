package balance

import (
	"context"

	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/id"
)

// Store persists balance and issuance entries.
//
// Get methods return ErrEntryNotFound from the root package when no entry
// has been written; callers treat that as Zero. Entries are never deleted.
type Store interface {
	GetBalance(ctx context.Context, c currency.ID, account id.AccountID) (*Entry, error)
	PutBalance(ctx context.Context, c currency.ID, account id.AccountID, e Entry) error
	ListBalances(ctx context.Context, c currency.ID) ([]Holding, error)

	GetIssuance(ctx context.Context, c currency.ID) (*Entry, error)
	PutIssuance(ctx context.Context, c currency.ID, e Entry) error
	ListCurrencies(ctx context.Context) ([]currency.ID, error)
}
