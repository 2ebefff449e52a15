package extension

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{})
	want := DefaultConfig()

	if cfg.BlockInterval != want.BlockInterval {
		t.Errorf("BlockInterval = %s", cfg.BlockInterval)
	}
	if !cfg.Genesis.Equal(want.Genesis) {
		t.Errorf("Genesis = %s", cfg.Genesis)
	}
	if cfg.PluginTimeout != want.PluginTimeout || cfg.KafkaTopic != want.KafkaTopic {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestMergeConfigurations(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	yamlCfg := Config{
		BlockInterval: 6 * time.Second,
		Currencies:    []currency.Config{{Name: "mana", HalfLifeBlocks: 100}},
	}
	programmatic := Config{
		DisableMigrate: true,
		BlockInterval:  time.Second,
		Genesis:        genesis,
		Currencies:     []currency.Config{{Name: "ignored"}},
		KafkaBrokers:   []string{"localhost:9092"},
	}

	cfg := mergeConfigurations(yamlCfg, programmatic)

	if cfg.BlockInterval != 6*time.Second {
		t.Errorf("YAML BlockInterval should win, got %s", cfg.BlockInterval)
	}
	if !cfg.Genesis.Equal(genesis) {
		t.Errorf("programmatic Genesis should fill the gap, got %s", cfg.Genesis)
	}
	if !cfg.DisableMigrate {
		t.Error("programmatic DisableMigrate should apply")
	}
	if len(cfg.Currencies) != 1 || cfg.Currencies[0].Name != "mana" {
		t.Errorf("Currencies = %+v", cfg.Currencies)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaTopic != "demurrage.events" {
		t.Errorf("kafka = %v %s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}
}

func TestBuildFromConfig(t *testing.T) {
	clk := clock.NewManual(0)
	e := New(
		WithCurrencies(currency.Config{Name: "mana", HalfLifeBlocks: 1000}),
		WithClock(clk),
		WithStrictCurrencies(),
	)
	e.config = mergeWithDefaults(e.config)

	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	eng := e.Engine()
	if eng == nil {
		t.Fatal("engine not built")
	}

	ctx := context.Background()
	if err := eng.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Health(ctx); err != nil {
		t.Errorf("Health: %v", err)
	}

	mana := currency.NewID([]byte("mana"))
	alice := id.NewAccountID()
	if err := eng.Issue(ctx, mana, alice, fixed.FromInt(8)); err != nil {
		t.Fatal(err)
	}
	clk.Advance(3000)

	bal, err := eng.Balance(ctx, mana, alice)
	if err != nil {
		t.Fatal(err)
	}
	if got := bal.StringFixed(9); got != "1.000000000" {
		t.Errorf("balance after three half-lives = %s, want 1", got)
	}

	// Strict mode is on: an unconfigured currency is rejected.
	if err := eng.Issue(ctx, currency.NewID([]byte("gold")), alice, fixed.One); err == nil {
		t.Error("expected unknown currency error")
	}
}

func TestBuildDefaults(t *testing.T) {
	e := New(WithKafka([]string{"localhost:9092"}, "events"))
	e.config = mergeWithDefaults(e.config)

	if err := e.build(); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.clock.(*clock.Interval); !ok {
		t.Errorf("clock = %T, want *clock.Interval", e.clock)
	}
	if e.Engine().Plugins().Get("kafka-sink") == nil {
		t.Error("kafka sink not registered")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"both rates", Config{
			BlockInterval: time.Second,
			Currencies:    []currency.Config{{Name: "x", HalfLifeBlocks: 1, DemurragePerBlock: "0.1"}},
		}},
		{"duplicate currency", Config{
			BlockInterval: time.Second,
			Currencies:    []currency.Config{{Name: "x"}, {Name: "x"}},
		}},
		{"negative interval", Config{BlockInterval: -time.Second}},
		{"interval too fine for genesis", Config{
			BlockInterval: 100 * time.Millisecond,
			Genesis:       time.Unix(0, 0),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithConfig(tt.cfg))
			if err := e.build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildFineIntervalFromRecentGenesis(t *testing.T) {
	e := New(WithConfig(Config{
		BlockInterval: 100 * time.Millisecond,
		Genesis:       time.Now().Add(-time.Hour),
	}))
	if err := e.build(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	eng := e.Engine()
	if err := eng.Start(ctx); err != nil {
		t.Fatal(err)
	}
	mana := currency.NewID([]byte("mana"))
	if err := eng.Issue(ctx, mana, id.NewAccountID(), fixed.One); err != nil {
		t.Errorf("issue to fresh account: %v", err)
	}
}
