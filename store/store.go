package store

import (
	"context"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/id"
)

// Store is the unified storage interface for the demurrage ledger.
// Get methods return demurrage.ErrEntryNotFound for absent entries.
type Store interface {
	// Balance methods
	GetBalance(ctx context.Context, c currency.ID, account id.AccountID) (*balance.Entry, error)
	PutBalance(ctx context.Context, c currency.ID, account id.AccountID, e balance.Entry) error
	ListBalances(ctx context.Context, c currency.ID) ([]balance.Holding, error)

	// Issuance methods
	GetIssuance(ctx context.Context, c currency.ID) (*balance.Entry, error)
	PutIssuance(ctx context.Context, c currency.ID, e balance.Entry) error
	ListCurrencies(ctx context.Context) ([]currency.ID, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// compile-time check that Store satisfies the balance sub-store.
var _ balance.Store = (Store)(nil)
