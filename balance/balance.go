// Package balance defines the persisted balance entry and the storage
// contract for balances and total issuance.
package balance

import (
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

// Entry is a principal as of a tick. The principal is the undecayed value
// at LastUpdate; the value at a later tick is obtained by applying
// demurrage for the elapsed ticks.
type Entry struct {
	Principal  fixed.I64F64 `json:"principal"`
	LastUpdate uint64       `json:"last_update"`
}

// Zero is the logical value of an entry that has never been written.
var Zero = Entry{}

// OrZero returns *e, or Zero when e is nil.
func OrZero(e *Entry) Entry {
	if e == nil {
		return Zero
	}
	return *e
}

// Holding is an account's entry within a currency.
type Holding struct {
	Account id.AccountID `json:"account"`
	Entry   Entry        `json:"entry"`
}
