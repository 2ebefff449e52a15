package demurrage

import (
	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
)

// Re-export common types for convenience so users don't have to import the
// fixed, balance and currency packages for everyday use.

// Amount is a signed 64.64 fixed-point quantity.
type Amount = fixed.I64F64

// Entry is re-exported from the balance package.
type Entry = balance.Entry

// Holding is re-exported from the balance package.
type Holding = balance.Holding

// CurrencyID is re-exported from the currency package.
type CurrencyID = currency.ID

// Re-export Amount constructors
var (
	AmountFromInt   = fixed.FromInt
	ParseAmount     = fixed.Parse
	MustParseAmount = fixed.MustParse
	ZeroAmount      = fixed.Zero
)

// Re-export currency helpers
var (
	NewCurrencyID    = currency.NewID
	RateFromHalfLife = currency.RateFromHalfLife
)
