package extension

import (
	"time"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/plugin"
	"github.com/xraph/demurrage/store"
)

// Option configures the demurrage Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithRegistry sets the currency registry, replacing Config.Currencies.
func WithRegistry(r currency.Registry) Option {
	return func(e *Extension) {
		e.registry = r
	}
}

// WithClock sets the tick source, replacing the interval clock built from
// Config.Genesis and Config.BlockInterval.
func WithClock(c clock.Clock) Option {
	return func(e *Extension) {
		e.clock = c
	}
}

// WithLedgerOption passes a demurrage.Option through to the underlying engine.
func WithLedgerOption(opt demurrage.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, demurrage.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithBlockInterval sets the wall-clock length of one tick.
func WithBlockInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.BlockInterval = d }
}

// WithGenesis sets the instant of tick 0.
func WithGenesis(t time.Time) Option {
	return func(e *Extension) { e.config.Genesis = t }
}

// WithStrictCurrencies rejects operations on unconfigured currencies.
func WithStrictCurrencies() Option {
	return func(e *Extension) { e.config.StrictCurrencies = true }
}

// WithCurrencies appends currency definitions.
func WithCurrencies(cfgs ...currency.Config) Option {
	return func(e *Extension) {
		e.config.Currencies = append(e.config.Currencies, cfgs...)
	}
}

// WithKafka enables the Kafka event sink.
func WithKafka(brokers []string, topic string) Option {
	return func(e *Extension) {
		e.config.KafkaBrokers = brokers
		e.config.KafkaTopic = topic
	}
}
