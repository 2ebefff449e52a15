package demurrage_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and behave as described.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		ctx := context.Background()

		reg := currency.NewStatic()
		rate, err := demurrage.RateFromHalfLife(6_307_200)
		if err != nil {
			t.Fatal(err)
		}
		mana, err := reg.Register(currency.Properties{Name: "mana", Rate: rate})
		if err != nil {
			t.Fatal(err)
		}

		clk := clock.NewManual(0)
		l := demurrage.New(memory.New(), reg, clk,
			demurrage.WithLogger(slog.Default()),
		)
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		alice, bob := demurrage.NewAccountID(), demurrage.NewAccountID()

		// Issue, burn and transfer.
		if err := l.Issue(ctx, mana, alice, demurrage.AmountFromInt(50)); err != nil {
			t.Fatal(err)
		}
		if err := l.Burn(ctx, mana, alice, demurrage.AmountFromInt(20)); err != nil {
			t.Fatal(err)
		}
		if err := l.Transfer(ctx, mana, alice, bob, demurrage.AmountFromInt(10)); err != nil {
			t.Fatal(err)
		}

		// Overdrafts are rejected.
		err = l.Transfer(ctx, mana, alice, bob, demurrage.AmountFromInt(60))
		if !errors.Is(err, demurrage.ErrBalanceTooLow) {
			t.Fatalf("expected ErrBalanceTooLow, got %v", err)
		}

		// One half-life later everything has halved.
		clk.Advance(6_307_200)
		bal, err := l.Balance(ctx, mana, alice)
		if err != nil {
			t.Fatal(err)
		}
		if got := bal.StringFixed(6); got != "10.000000" {
			t.Errorf("alice = %s, want 10.000000", got)
		}
		total, err := l.TotalIssuance(ctx, mana)
		if err != nil {
			t.Fatal(err)
		}
		if got := total.StringFixed(6); got != "15.000000" {
			t.Errorf("total = %s, want 15.000000", got)
		}
	})

	t.Run("AmountExamples", func(t *testing.T) {
		a := demurrage.MustParseAmount("1.5")
		b := demurrage.AmountFromInt(2)

		sum, ok := a.CheckedAdd(b)
		if !ok || sum.String() != "3.5" {
			t.Errorf("1.5 + 2 = %s", sum)
		}
		if !a.LessThan(b) {
			t.Error("1.5 should be less than 2")
		}
		if _, err := demurrage.ParseAmount("not a number"); err == nil {
			t.Error("expected parse error")
		}
		if !demurrage.ZeroAmount.IsZero() {
			t.Error("ZeroAmount should be zero")
		}
	})

	t.Run("CurrencyIDExamples", func(t *testing.T) {
		id := demurrage.NewCurrencyID([]byte("mana"))
		parsed, err := currency.ParseID(id.String())
		if err != nil || parsed != id {
			t.Errorf("round trip = %v, %v", parsed, err)
		}
	})
}
