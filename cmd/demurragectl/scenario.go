package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
	"github.com/xraph/demurrage/store/memory"
)

// Scenario is a scripted run against an in-memory ledger.
type Scenario struct {
	Currencies []currency.Config `yaml:"currencies"`
	Steps      []Step            `yaml:"steps"`
}

// Step is one ledger operation at an absolute tick.
type Step struct {
	At       uint64 `yaml:"at"`
	Op       string `yaml:"op"`
	Currency string `yaml:"currency"`
	Account  string `yaml:"account"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Amount   string `yaml:"amount"`

	// Expect names the error the step must fail with, e.g. "balance too low".
	Expect string `yaml:"expect"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario and validates every step. All
// problems are reported together as a demurrage.MultiError.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	var errs demurrage.MultiError
	if len(s.Currencies) == 0 {
		errs.Add(demurrage.ValidationError{Field: "currencies", Message: "at least one currency is required"})
	}
	var last uint64
	for i, st := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if st.At < last {
			errs.Add(demurrage.ValidationError{Field: field, Message: fmt.Sprintf("tick %d is before tick %d", st.At, last)})
		}
		last = st.At
		if !knownOps[strings.ToLower(st.Op)] {
			errs.Add(demurrage.ValidationError{Field: field, Message: fmt.Sprintf("unknown op %q", st.Op)})
		}
		if st.Amount != "" {
			if _, err := fixed.Parse(st.Amount); err != nil {
				errs.Add(demurrage.ValidationError{Field: field, Message: err.Error()})
			}
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &s, nil
}

var knownOps = map[string]bool{
	"issue":        true,
	"burn":         true,
	"transfer":     true,
	"slash":        true,
	"update":       true,
	"can_withdraw": true,
	"balance":      true,
}

// runner executes a scenario and reports to out.
type runner struct {
	ledger   *demurrage.Ledger
	registry *currency.Static
	clock    *clock.Manual
	accounts map[string]id.AccountID
	out      io.Writer
}

// Run executes s and prints a step log plus the final state to out. It
// returns an error on the first step whose outcome does not match its
// expectation.
func Run(ctx context.Context, s *Scenario, out io.Writer, logger *slog.Logger, strict bool) error {
	reg, err := currency.FromConfig(s.Currencies)
	if err != nil {
		return err
	}

	r := &runner{
		registry: reg,
		clock:    clock.NewManual(0),
		accounts: make(map[string]id.AccountID),
		out:      out,
	}

	opts := []demurrage.Option{demurrage.WithLogger(logger)}
	if strict {
		opts = append(opts, demurrage.WithStrictCurrencies())
	}
	r.ledger = demurrage.New(memory.New(), reg, r.clock, opts...)
	if err := r.ledger.Start(ctx); err != nil {
		return err
	}
	defer r.ledger.Stop()

	for i, st := range s.Steps {
		r.clock.Set(st.At)
		result, err := r.apply(ctx, st)
		if err := r.check(i+1, st, result, err); err != nil {
			return err
		}
	}
	return r.report(ctx)
}

func (r *runner) apply(ctx context.Context, st Step) (string, error) {
	c, err := r.currency(st.Currency)
	if err != nil {
		return "", err
	}
	amount := fixed.Zero
	if st.Amount != "" {
		if amount, err = fixed.Parse(st.Amount); err != nil {
			return "", err
		}
	}

	switch strings.ToLower(st.Op) {
	case "issue":
		return "", r.ledger.Issue(ctx, c, r.account(st.Account), amount)
	case "burn":
		return "", r.ledger.Burn(ctx, c, r.account(st.Account), amount)
	case "transfer":
		return "", r.ledger.Transfer(ctx, c, r.account(st.From), r.account(st.To), amount)
	case "slash":
		remainder, err := r.ledger.Slash(ctx, c, r.account(st.Account), amount)
		return "remainder " + remainder.StringFixed(9), err
	case "update":
		return "", r.ledger.UpdateBalance(ctx, c, r.account(st.Account), amount)
	case "can_withdraw":
		return "", r.ledger.CanWithdraw(ctx, c, r.account(st.Account), amount)
	case "balance":
		bal, err := r.ledger.Balance(ctx, c, r.account(st.Account))
		return bal.StringFixed(9), err
	default:
		return "", fmt.Errorf("unknown op %q", st.Op)
	}
}

func (r *runner) check(n int, st Step, result string, err error) error {
	status := "ok"
	if err != nil {
		status = "error: " + strings.TrimPrefix(err.Error(), "demurrage: ")
	}
	if result != "" {
		status += " (" + result + ")"
	}
	fmt.Fprintf(r.out, "%4d  @%-10d %-12s %-8s %s\n", n, st.At, st.Op, st.Currency, status)

	switch {
	case st.Expect == "" && err != nil:
		return fmt.Errorf("step %d: %s: %w", n, st.Op, err)
	case st.Expect != "" && err == nil:
		return fmt.Errorf("step %d: %s succeeded, want %q", n, st.Op, st.Expect)
	case st.Expect != "" && !strings.Contains(err.Error(), st.Expect):
		return fmt.Errorf("step %d: %s: got %v, want %q", n, st.Op, err, st.Expect)
	}
	return nil
}

func (r *runner) report(ctx context.Context) error {
	names := make([]string, 0, len(r.accounts))
	for name := range r.accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(r.out, "\nstate at tick %d\n", r.clock.Now())
	for _, p := range r.registry.List() {
		total, err := r.ledger.TotalIssuance(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\n%s (%s)\n", p.Name, p.ID)
		for _, name := range names {
			bal, err := r.ledger.Balance(ctx, p.ID, r.accounts[name])
			if err != nil {
				return err
			}
			if bal.IsZero() {
				continue
			}
			fmt.Fprintf(r.out, "  %-16s %s\n", name, bal.StringFixed(18))
		}
		cons, err := r.ledger.CheckConservation(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  %-16s %s\n", "total issuance", total.StringFixed(18))
		fmt.Fprintf(r.out, "  %-16s %s\n", "drift", cons.Drift.String())
	}
	return nil
}

func (r *runner) currency(name string) (currency.ID, error) {
	if c, ok := r.registry.Lookup(name); ok {
		return c, nil
	}
	if c, err := currency.ParseID(name); err == nil {
		return c, nil
	}
	return currency.ID{}, fmt.Errorf("unknown currency %q", name)
}

// account maps a scenario account name to a stable ID for the run.
func (r *runner) account(name string) id.AccountID {
	if a, ok := r.accounts[name]; ok {
		return a
	}
	a := id.NewAccountID()
	r.accounts[name] = a
	return a
}
