package decay_test

import (
	"math"
	"testing"

	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/decay"
	"github.com/xraph/demurrage/fixed"
)

const year = 6_307_200

func mustRate(t *testing.T, halfLife uint64) fixed.I64F64 {
	t.Helper()
	rate, err := currency.RateFromHalfLife(halfLife)
	if err != nil {
		t.Fatal(err)
	}
	return rate
}

func TestFactorAtHalfLife(t *testing.T) {
	for _, h := range []uint64{1, 10, 1000, year} {
		rate := mustRate(t, h)
		got := decay.Factor(rate, h)
		if diff := math.Abs(got.Float64() - 0.5); diff > 1e-12 {
			t.Errorf("H=%d: factor = %s, want 0.5 (diff %g)", h, got, diff)
		}
	}
}

func TestFactorAtLongHalfLife(t *testing.T) {
	const h = 1 << 31
	got := decay.Factor(mustRate(t, h), h).Float64()
	// Truncating ln2/h biases the factor upward by at most h·2^-65.
	if got < 0.5-1e-12 || got > 0.5+6e-11 {
		t.Errorf("factor = %.15f, want within [0.5, 0.5+6e-11]", got)
	}
}

func TestFactorTwoHalfLives(t *testing.T) {
	rate := mustRate(t, 1000)
	got := decay.Factor(rate, 2000)
	if diff := math.Abs(got.Float64() - 0.25); diff > 1e-12 {
		t.Errorf("factor = %s, want 0.25", got)
	}
}

func TestFactorIdentity(t *testing.T) {
	if !decay.Factor(mustRate(t, 100), 0).Equal(fixed.One) {
		t.Error("zero elapsed should give factor 1")
	}
	if !decay.Factor(fixed.Zero, 1_000_000).Equal(fixed.One) {
		t.Error("zero rate should give factor 1")
	}
}

func TestPeek(t *testing.T) {
	rate := mustRate(t, year)
	e := balance.Entry{Principal: fixed.FromInt(100), LastUpdate: 0}

	got := decay.Peek(e, rate, year)
	if diff := math.Abs(got.Float64() - 50); diff > 1e-10 {
		t.Errorf("Peek = %s, want ~50", got)
	}
	if !e.Principal.Equal(fixed.FromInt(100)) || e.LastUpdate != 0 {
		t.Error("Peek must not modify the entry")
	}

	if !decay.Peek(balance.Zero, rate, year).IsZero() {
		t.Error("zero principal should stay zero")
	}
	if !decay.Peek(e, rate, 0).Equal(e.Principal) {
		t.Error("no elapsed time should leave the principal unchanged")
	}
}

func TestMaterialize(t *testing.T) {
	rate := mustRate(t, 1000)
	e := balance.Entry{Principal: fixed.FromInt(80), LastUpdate: 500}

	got := decay.Materialize(e, rate, 1500)
	if got.LastUpdate != 1500 {
		t.Errorf("LastUpdate = %d, want 1500", got.LastUpdate)
	}
	if diff := math.Abs(got.Principal.Float64() - 40); diff > 1e-10 {
		t.Errorf("Principal = %s, want ~40", got.Principal)
	}
	if !got.Principal.Equal(decay.Peek(e, rate, 1500)) {
		t.Error("Materialize and Peek disagree")
	}
}

func TestMaterializeComposes(t *testing.T) {
	rate := mustRate(t, 1000)
	e := balance.Entry{Principal: fixed.FromInt(1_000_000)}

	direct := decay.Peek(e, rate, 3000)

	stepped := e
	for tick := uint64(250); tick <= 3000; tick += 250 {
		stepped = decay.Materialize(stepped, rate, tick)
	}

	if diff := math.Abs(direct.Float64() - stepped.Principal.Float64()); diff > 1e-9 {
		t.Errorf("stepped decay %s drifted from direct %s", stepped.Principal, direct)
	}
}

func TestDecayFlushesToZero(t *testing.T) {
	rate := mustRate(t, 1)
	e := balance.Entry{Principal: fixed.FromInt(1 << 40)}
	if got := decay.Peek(e, rate, 200); !got.IsZero() {
		t.Errorf("after 200 half-lives: %s, want 0", got)
	}
}

func TestPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"time backwards", func() {
			decay.Peek(balance.Entry{Principal: fixed.One, LastUpdate: 10}, fixed.Zero, 5)
		}},
		{"negative rate", func() {
			decay.Factor(fixed.FromInt(-1), 1)
		}},
		{"elapsed too large", func() {
			decay.Factor(fixed.One, decay.MaxElapsed+1)
		}},
		{"exponent overflow", func() {
			decay.Factor(fixed.FromInt(1<<40), decay.MaxElapsed)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestLongGapsWithoutDecay(t *testing.T) {
	far := uint64(decay.MaxElapsed) * 4

	if got := decay.Factor(fixed.Zero, far); !got.Equal(fixed.One) {
		t.Errorf("zero rate factor = %s, want 1", got)
	}

	tests := []struct {
		name  string
		entry balance.Entry
		rate  fixed.I64F64
		want  fixed.I64F64
	}{
		{"absent entry", balance.Zero, mustRate(t, 1000), fixed.Zero},
		{"zero rate", balance.Entry{Principal: fixed.FromInt(7)}, fixed.Zero, fixed.FromInt(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decay.Peek(tt.entry, tt.rate, far); !got.Equal(tt.want) {
				t.Errorf("Peek = %s, want %s", got, tt.want)
			}
			e := decay.Materialize(tt.entry, tt.rate, far)
			if e.LastUpdate != far || !e.Principal.Equal(tt.want) {
				t.Errorf("Materialize = %+v", e)
			}
		})
	}
}
