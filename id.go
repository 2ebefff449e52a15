package demurrage

import "github.com/xraph/demurrage/id"

// ID is the primary identifier type for accounts and events.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// AccountID identifies an account.
type AccountID = id.AccountID

// NewAccountID returns a fresh account ID.
func NewAccountID() AccountID { return id.NewAccountID() }

// ParseAccountID parses an "acct_" TypeID string.
func ParseAccountID(s string) (AccountID, error) { return id.ParseAccountID(s) }
