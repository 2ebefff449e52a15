package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/xraph/demurrage"
	audithook "github.com/xraph/demurrage/audit_hook"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
	"github.com/xraph/demurrage/store/memory"
)

type captured struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (c *captured) record(_ context.Context, e *audithook.AuditEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captured) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

func newLedger(t *testing.T, hook *audithook.Extension) (*demurrage.Ledger, currency.ID) {
	t.Helper()
	reg := currency.NewStatic()
	mana, err := reg.Register(currency.Properties{Name: "mana"})
	if err != nil {
		t.Fatal(err)
	}
	l := demurrage.New(memory.New(), reg, clock.NewManual(1),
		demurrage.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		demurrage.WithPlugin(hook),
	)
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return l, mana
}

func TestAuditTrail(t *testing.T) {
	rec := &captured{}
	l, mana := newLedger(t, audithook.New(audithook.RecorderFunc(rec.record)))
	ctx := context.Background()
	alice, bob := id.NewAccountID(), id.NewAccountID()

	_ = l.Issue(ctx, mana, alice, fixed.FromInt(10))
	_ = l.Transfer(ctx, mana, alice, bob, fixed.FromInt(4))
	_ = l.Burn(ctx, mana, bob, fixed.FromInt(1))
	_, _ = l.Slash(ctx, mana, bob, fixed.FromInt(5))
	_ = l.Transfer(ctx, mana, alice, bob, fixed.FromInt(100))

	want := []string{
		audithook.ActionIssued,
		audithook.ActionTransferred,
		audithook.ActionBurned,
		audithook.ActionSlashed,
		audithook.ActionOperationFailed,
	}
	got := rec.actions()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	transfer := rec.events[1]
	if transfer.Metadata["amount"] != "4" || transfer.Metadata["from"] != alice.String() {
		t.Errorf("transfer metadata = %v", transfer.Metadata)
	}

	slash := rec.events[3]
	if slash.Outcome != audithook.OutcomePartial {
		t.Errorf("slash of 5 from 3 outcome = %s, want partial", slash.Outcome)
	}

	failed := rec.events[4]
	if failed.Severity != audithook.SeverityWarning || failed.ResourceID != demurrage.OpTransfer {
		t.Errorf("failure event = %+v", failed)
	}
	if failed.Reason != demurrage.ErrBalanceTooLow.Error() {
		t.Errorf("reason = %q", failed.Reason)
	}
}

func TestEnabledActions(t *testing.T) {
	rec := &captured{}
	hook := audithook.New(audithook.RecorderFunc(rec.record),
		audithook.WithEnabledActions(audithook.ActionIssued),
	)
	l, mana := newLedger(t, hook)
	ctx := context.Background()
	alice := id.NewAccountID()

	_ = l.Issue(ctx, mana, alice, fixed.FromInt(10))
	_ = l.Burn(ctx, mana, alice, fixed.FromInt(1))

	if got := rec.actions(); len(got) != 1 || got[0] != audithook.ActionIssued {
		t.Errorf("actions = %v", got)
	}
}

func TestDisabledActions(t *testing.T) {
	rec := &captured{}
	hook := audithook.New(audithook.RecorderFunc(rec.record),
		audithook.WithDisabledActions(audithook.ActionIssued),
	)
	l, mana := newLedger(t, hook)
	ctx := context.Background()
	alice := id.NewAccountID()

	_ = l.Issue(ctx, mana, alice, fixed.FromInt(10))
	_ = l.Burn(ctx, mana, alice, fixed.FromInt(1))

	if got := rec.actions(); len(got) != 1 || got[0] != audithook.ActionBurned {
		t.Errorf("actions = %v", got)
	}
}

func TestRecorderErrorsAreSwallowed(t *testing.T) {
	hook := audithook.New(
		audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
			return errors.New("backend down")
		}),
		audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	l, mana := newLedger(t, hook)

	if err := l.Issue(context.Background(), mana, id.NewAccountID(), fixed.FromInt(1)); err != nil {
		t.Errorf("recorder failure leaked into the ledger: %v", err)
	}
}
