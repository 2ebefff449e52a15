// Package demurrage provides a multi-asset balance ledger whose balances
// decay continuously over time.
//
// Demurrage is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - Per-currency continuous decay, balance(t) = principal · e^(−rate·Δt)
//   - Exact, deterministic Q64.64 fixed-point arithmetic
//   - Lazy decay: reads never write, mutations materialize touched entries
//   - Transfer, issue, burn, slash and signed balance updates
//   - Pluggable storage (memory, PostgreSQL, SQLite, MongoDB)
//   - Plugin hooks for audit trails, metrics and Kafka event streams
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/demurrage"
//	    "github.com/xraph/demurrage/clock"
//	    "github.com/xraph/demurrage/currency"
//	    "github.com/xraph/demurrage/store/memory"
//	)
//
//	reg := currency.NewStatic()
//	rate, _ := currency.RateFromHalfLife(6_307_200) // one year of 5s blocks
//	mana, _ := reg.Register(currency.Properties{Name: "mana", Rate: rate})
//
//	l := demurrage.New(memory.New(), reg, clock.NewManual(0))
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	alice := demurrage.NewAccountID()
//	_ = l.Issue(ctx, mana, alice, demurrage.AmountFromInt(100))
//
// One half-life later Balance reports about 50 for alice, and TotalIssuance
// decays by the same factor.
//
// # Time
//
// Time is a uint64 tick supplied by a clock.Clock, typically a block height.
// It must never run backwards for an entry: an operation observing a tick
// earlier than a stored entry's timestamp panics, as does an elapsed span
// beyond MaxUint32 ticks.
//
// # Amounts
//
// Amounts are fixed.I64F64 values, signed 128-bit numbers with 64
// fractional bits. All arithmetic is checked. Failure modes surface as the
// sentinel errors in this package and leave the store untouched.
//
// # Concurrency
//
// A Ledger does no locking of its own. Hosts serialize mutating calls, as a
// blockchain runtime does per block.
package demurrage
