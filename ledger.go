package demurrage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/decay"
	"github.com/xraph/demurrage/event"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
	"github.com/xraph/demurrage/plugin"
	"github.com/xraph/demurrage/store"
)

// Operation names reported to OnOperationFailed plugins and logs.
const (
	OpTransfer      = "transfer"
	OpIssue         = "issue"
	OpBurn          = "burn"
	OpSlash         = "slash"
	OpUpdateBalance = "update_balance"
	OpCanWithdraw   = "can_withdraw"
)

// Ledger is the demurrage balance engine.
//
// Every stored principal decays continuously at its currency's rate. Decay is
// applied lazily: queries compute the decayed value without writing, and
// mutations first bring each touched entry forward to the current tick,
// check their preconditions against the decayed values, and only then write.
//
// Ledger performs no locking. The host must serialize mutating calls.
type Ledger struct {
	store    store.Store
	registry currency.Registry
	clock    clock.Clock
	plugins  *plugin.Registry
	logger   *slog.Logger

	strictCurrencies bool
	skipMigrate      bool
}

// New creates a new Ledger.
func New(s store.Store, reg currency.Registry, clk clock.Clock, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		registry: reg,
		clock:    clk,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds how long each plugin hook may run.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithStrictCurrencies rejects operations on currencies the registry does
// not know with ErrUnknownCurrency. By default unknown currencies are
// accepted and do not decay.
func WithStrictCurrencies() Option {
	return func(l *Ledger) {
		l.strictCurrencies = true
	}
}

// WithSkipMigrate makes Start leave the store schema untouched.
func WithSkipMigrate() Option {
	return func(l *Ledger) {
		l.skipMigrate = true
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if !l.skipMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return err
		}
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("demurrage ledger started",
		"block", l.clock.Now(),
		"plugins", l.plugins.Count(),
		"strict_currencies", l.strictCurrencies,
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Balance returns the decayed balance of account in c. It writes nothing.
func (l *Ledger) Balance(ctx context.Context, c currency.ID, account id.AccountID) (fixed.I64F64, error) {
	e, err := l.loadBalance(ctx, c, account)
	if err != nil {
		return fixed.Zero, err
	}
	return decay.Peek(e, l.registry.RateOf(c), l.clock.Now()), nil
}

// TotalIssuance returns the decayed total issuance of c. It writes nothing.
func (l *Ledger) TotalIssuance(ctx context.Context, c currency.ID) (fixed.I64F64, error) {
	e, err := l.loadIssuance(ctx, c)
	if err != nil {
		return fixed.Zero, err
	}
	return decay.Peek(e, l.registry.RateOf(c), l.clock.Now()), nil
}

// Entry returns the stored, undecayed balance entry of account in c.
func (l *Ledger) Entry(ctx context.Context, c currency.ID, account id.AccountID) (balance.Entry, error) {
	return l.loadBalance(ctx, c, account)
}

// IssuanceEntry returns the stored, undecayed issuance entry of c.
func (l *Ledger) IssuanceEntry(ctx context.Context, c currency.ID) (balance.Entry, error) {
	return l.loadIssuance(ctx, c)
}

// Balances returns the decayed balances of every account that holds an
// entry in c, ordered by account. It writes nothing.
func (l *Ledger) Balances(ctx context.Context, c currency.ID) ([]balance.Holding, error) {
	holdings, err := l.store.ListBalances(ctx, c)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	rate := l.registry.RateOf(c)
	for i := range holdings {
		holdings[i].Entry = balance.Entry{
			Principal:  decay.Peek(holdings[i].Entry, rate, now),
			LastUpdate: now,
		}
	}
	return holdings, nil
}

// CanWithdraw reports whether amount could be burned from account now. It
// returns ErrBalanceTooLow if not and writes nothing.
func (l *Ledger) CanWithdraw(ctx context.Context, c currency.ID, account id.AccountID, amount fixed.I64F64) error {
	if err := l.validate(c, amount); err != nil {
		return err
	}
	bal, err := l.Balance(ctx, c, account)
	if err != nil {
		return err
	}
	if bal.LessThan(amount) {
		return ErrBalanceTooLow
	}
	return nil
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

// Transfer moves amount of c from one account to another. The source is
// checked against its decayed balance. A transfer to the same account only
// refreshes the entry's timestamp. A Transferred event carrying the requested
// amount is emitted exactly once on success.
func (l *Ledger) Transfer(ctx context.Context, c currency.ID, from, to id.AccountID, amount fixed.I64F64) error {
	if err := l.validate(c, amount); err != nil {
		return l.fail(ctx, OpTransfer, err)
	}

	now := l.clock.Now()
	rate := l.registry.RateOf(c)

	fromEntry, err := l.loadBalance(ctx, c, from)
	if err != nil {
		return err
	}
	src := decay.Materialize(fromEntry, rate, now)
	if src.Principal.LessThan(amount) {
		return l.fail(ctx, OpTransfer, ErrBalanceTooLow)
	}

	if from.String() == to.String() {
		if err := l.store.PutBalance(ctx, c, from, src); err != nil {
			return err
		}
	} else {
		toEntry, err := l.loadBalance(ctx, c, to)
		if err != nil {
			return err
		}
		dst := decay.Materialize(toEntry, rate, now)

		// amount <= src, so the subtraction cannot leave the range.
		src.Principal, _ = src.Principal.CheckedSub(amount)

		var ok bool
		dst.Principal, ok = dst.Principal.CheckedAdd(amount)
		if !ok {
			return l.fail(ctx, OpTransfer, ErrBalanceOverflow)
		}

		if err := l.store.PutBalance(ctx, c, from, src); err != nil {
			return err
		}
		if err := l.store.PutBalance(ctx, c, to, dst); err != nil {
			return err
		}
	}

	l.logger.Debug("transferred",
		"currency", c,
		"from", from,
		"to", to,
		"amount", amount,
		"block", now,
	)

	l.plugins.EmitTransferred(ctx, &event.Transferred{
		Header: event.NewHeader(c, now),
		From:   from,
		To:     to,
		Amount: amount,
	})
	return nil
}

// Issue creates amount of c in account and adds it to the total issuance.
func (l *Ledger) Issue(ctx context.Context, c currency.ID, account id.AccountID, amount fixed.I64F64) error {
	if err := l.validate(c, amount); err != nil {
		return l.fail(ctx, OpIssue, err)
	}

	now := l.clock.Now()
	rate := l.registry.RateOf(c)

	totEntry, err := l.loadIssuance(ctx, c)
	if err != nil {
		return err
	}
	tot := decay.Materialize(totEntry, rate, now)

	var ok bool
	tot.Principal, ok = tot.Principal.CheckedAdd(amount)
	if !ok {
		return l.fail(ctx, OpIssue, ErrTotalIssuanceOverflow)
	}

	whoEntry, err := l.loadBalance(ctx, c, account)
	if err != nil {
		return err
	}
	who := decay.Materialize(whoEntry, rate, now)
	who.Principal, ok = who.Principal.CheckedAdd(amount)
	if !ok {
		return l.fail(ctx, OpIssue, ErrBalanceOverflow)
	}

	if err := l.store.PutIssuance(ctx, c, tot); err != nil {
		return err
	}
	if err := l.store.PutBalance(ctx, c, account, who); err != nil {
		return err
	}

	l.logger.Debug("issued",
		"currency", c,
		"account", account,
		"amount", amount,
		"block", now,
	)

	l.plugins.EmitIssued(ctx, &event.Issued{
		Header:  event.NewHeader(c, now),
		Account: account,
		Amount:  amount,
	})
	return nil
}

// Burn destroys amount of c from account and removes it from the total
// issuance. The decayed balance must cover amount.
func (l *Ledger) Burn(ctx context.Context, c currency.ID, account id.AccountID, amount fixed.I64F64) error {
	if err := l.validate(c, amount); err != nil {
		return l.fail(ctx, OpBurn, err)
	}
	return l.burn(ctx, OpBurn, c, account, amount)
}

func (l *Ledger) burn(ctx context.Context, op string, c currency.ID, account id.AccountID, amount fixed.I64F64) error {
	now := l.clock.Now()
	rate := l.registry.RateOf(c)

	whoEntry, err := l.loadBalance(ctx, c, account)
	if err != nil {
		return err
	}
	who := decay.Materialize(whoEntry, rate, now)

	remaining, ok := who.Principal.CheckedSub(amount)
	if !ok || remaining.IsNegative() {
		return l.fail(ctx, op, ErrBalanceTooLow)
	}
	who.Principal = remaining

	totEntry, err := l.loadIssuance(ctx, c)
	if err != nil {
		return err
	}
	tot := decay.Materialize(totEntry, rate, now)
	tot.Principal = subClamped(tot.Principal, amount)

	if err := l.store.PutIssuance(ctx, c, tot); err != nil {
		return err
	}
	if err := l.store.PutBalance(ctx, c, account, who); err != nil {
		return err
	}

	l.logger.Debug("burned",
		"currency", c,
		"account", account,
		"amount", amount,
		"block", now,
	)

	l.plugins.EmitBurned(ctx, &event.Burned{
		Header:  event.NewHeader(c, now),
		Account: account,
		Amount:  amount,
	})
	return nil
}

// Slash removes up to amount of c from account, never failing for lack of
// funds. The same quantity is removed from the total issuance. It returns
// the part of amount that could not be slashed.
func (l *Ledger) Slash(ctx context.Context, c currency.ID, account id.AccountID, amount fixed.I64F64) (fixed.I64F64, error) {
	if err := l.validate(c, amount); err != nil {
		return fixed.Zero, l.fail(ctx, OpSlash, err)
	}

	now := l.clock.Now()
	rate := l.registry.RateOf(c)

	whoEntry, err := l.loadBalance(ctx, c, account)
	if err != nil {
		return fixed.Zero, err
	}
	totEntry, err := l.loadIssuance(ctx, c)
	if err != nil {
		return fixed.Zero, err
	}
	who := decay.Materialize(whoEntry, rate, now)
	tot := decay.Materialize(totEntry, rate, now)

	slashed := who.Principal.Max(fixed.Zero).Min(amount)
	who.Principal, _ = who.Principal.CheckedSub(slashed)
	tot.Principal = subClamped(tot.Principal, slashed)

	if err := l.store.PutIssuance(ctx, c, tot); err != nil {
		return fixed.Zero, err
	}
	if err := l.store.PutBalance(ctx, c, account, who); err != nil {
		return fixed.Zero, err
	}

	remainder, _ := amount.CheckedSub(slashed)

	l.logger.Debug("slashed",
		"currency", c,
		"account", account,
		"requested", amount,
		"slashed", slashed,
		"block", now,
	)

	l.plugins.EmitSlashed(ctx, &event.Slashed{
		Header:    event.NewHeader(c, now),
		Account:   account,
		Requested: amount,
		Slashed:   slashed,
	})
	return remainder, nil
}

// UpdateBalance applies a signed change: a positive delta issues, a negative
// delta burns its magnitude, and zero does nothing. A delta whose magnitude
// is not representable fails with ErrAmountIntoBalanceFailed.
func (l *Ledger) UpdateBalance(ctx context.Context, c currency.ID, account id.AccountID, delta fixed.I64F64) error {
	switch {
	case delta.IsZero():
		return nil
	case delta.IsPositive():
		return l.Issue(ctx, c, account, delta)
	}

	amount, ok := delta.CheckedNeg()
	if !ok {
		return l.fail(ctx, OpUpdateBalance, ErrAmountIntoBalanceFailed)
	}
	if err := l.validate(c, amount); err != nil {
		return l.fail(ctx, OpUpdateBalance, err)
	}
	return l.burn(ctx, OpUpdateBalance, c, account, amount)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func (l *Ledger) validate(c currency.ID, amount fixed.I64F64) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if l.strictCurrencies && !l.registry.Exists(c) {
		return ErrUnknownCurrency
	}
	return nil
}

// fail reports a rejected operation to plugins and returns err.
func (l *Ledger) fail(ctx context.Context, op string, err error) error {
	l.logger.Debug("operation rejected",
		"op", op,
		"error", err,
	)
	l.plugins.EmitOperationFailed(ctx, op, err)
	return err
}

func (l *Ledger) loadBalance(ctx context.Context, c currency.ID, account id.AccountID) (balance.Entry, error) {
	e, err := l.store.GetBalance(ctx, c, account)
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		return balance.Zero, err
	}
	return balance.OrZero(e), nil
}

func (l *Ledger) loadIssuance(ctx context.Context, c currency.ID) (balance.Entry, error) {
	e, err := l.store.GetIssuance(ctx, c)
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		return balance.Zero, err
	}
	return balance.OrZero(e), nil
}

// subClamped returns x - y, or zero if that would be negative. Rounding can
// leave a decayed total a few ulps below the sum of decayed balances; the
// total is never persisted negative.
func subClamped(x, y fixed.I64F64) fixed.I64F64 {
	d, ok := x.CheckedSub(y)
	if !ok || d.IsNegative() {
		return fixed.Zero
	}
	return d
}
