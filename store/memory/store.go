// Package memory implements store.Store in process memory. It suits tests,
// simulations and hosts that persist state elsewhere.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/id"
	demurragestore "github.com/xraph/demurrage/store"
)

// compile-time interface check
var _ demurragestore.Store = (*Store)(nil)

type holdingKey struct {
	currency currency.ID
	account  string
}

// Store keeps entries in maps guarded by a RWMutex. Entries are copied in
// and out so callers never alias stored state.
type Store struct {
	mu sync.RWMutex

	// Balance storage, keyed by (currency, account)
	balances map[holdingKey]balance.Entry
	accounts map[string]id.AccountID

	// Issuance storage
	issuance map[currency.ID]balance.Entry

	closed bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		balances: make(map[holdingKey]balance.Entry),
		accounts: make(map[string]id.AccountID),
		issuance: make(map[currency.ID]balance.Entry),
	}
}

// ==================== Balance Store ====================

func (s *Store) GetBalance(_ context.Context, c currency.ID, account id.AccountID) (*balance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, demurrage.ErrStoreClosed
	}
	e, ok := s.balances[holdingKey{c, account.String()}]
	if !ok {
		return nil, demurrage.ErrEntryNotFound
	}
	return &e, nil
}

func (s *Store) PutBalance(_ context.Context, c currency.ID, account id.AccountID, e balance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return demurrage.ErrStoreClosed
	}
	key := account.String()
	s.balances[holdingKey{c, key}] = e
	s.accounts[key] = account
	return nil
}

func (s *Store) ListBalances(_ context.Context, c currency.ID) ([]balance.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, demurrage.ErrStoreClosed
	}
	var result []balance.Holding
	for k, e := range s.balances {
		if k.currency != c {
			continue
		}
		result = append(result, balance.Holding{Account: s.accounts[k.account], Entry: e})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Account.String() < result[j].Account.String()
	})
	return result, nil
}

// ==================== Issuance Store ====================

func (s *Store) GetIssuance(_ context.Context, c currency.ID) (*balance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, demurrage.ErrStoreClosed
	}
	e, ok := s.issuance[c]
	if !ok {
		return nil, demurrage.ErrEntryNotFound
	}
	return &e, nil
}

func (s *Store) PutIssuance(_ context.Context, c currency.ID, e balance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return demurrage.ErrStoreClosed
	}
	s.issuance[c] = e
	return nil
}

func (s *Store) ListCurrencies(_ context.Context) ([]currency.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, demurrage.ErrStoreClosed
	}
	result := make([]currency.ID, 0, len(s.issuance))
	for c := range s.issuance {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result, nil
}

// ==================== Core ====================

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports ErrStoreClosed after Close.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return demurrage.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Subsequent calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
