// Package extension provides the Forge extension adapter for the demurrage
// ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.demurrage" or
// "demurrage" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/clock"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/decay"
	"github.com/xraph/demurrage/kafkasink"
	"github.com/xraph/demurrage/store"
	"github.com/xraph/demurrage/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "demurrage"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-asset ledger with continuously decaying balances"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the demurrage ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *demurrage.Ledger
	store      store.Store
	registry   currency.Registry
	clock      clock.Clock
	ledgerOpts []demurrage.Option
}

// New creates a new demurrage Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *demurrage.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*demurrage.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("demurrage: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("demurrage: store not initialized")
	}
	return e.store.Ping(ctx)
}

// build assembles the store, registry, clock and engine from the resolved
// config. Components set programmatically take precedence.
func (e *Extension) build() error {
	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	if e.registry == nil {
		reg, err := currency.FromConfig(e.config.Currencies)
		if err != nil {
			return fmt.Errorf("demurrage: currencies: %w", err)
		}
		e.registry = reg
	}

	if e.clock == nil {
		if e.config.BlockInterval <= 0 {
			return fmt.Errorf("demurrage: block_interval must be positive, got %s", e.config.BlockInterval)
		}
		e.clock = clock.NewInterval(e.config.Genesis, e.config.BlockInterval)
	}
	if now := e.clock.Now(); now > decay.MaxElapsed {
		return fmt.Errorf("demurrage: clock is already at tick %d, past the %d ticks a single decay step covers; "+
			"move genesis closer or widen block_interval", now, uint64(decay.MaxElapsed))
	}

	e.engine = demurrage.New(e.store, e.registry, e.clock, e.buildLedgerOpts()...)
	return nil
}

// buildLedgerOpts constructs demurrage.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []demurrage.Option {
	opts := make([]demurrage.Option, 0, len(e.ledgerOpts)+4)

	// Apply config-derived options.
	if e.config.DisableMigrate {
		opts = append(opts, demurrage.WithSkipMigrate())
	}
	if e.config.StrictCurrencies {
		opts = append(opts, demurrage.WithStrictCurrencies())
	}
	if e.config.PluginTimeout > 0 {
		opts = append(opts, demurrage.WithPluginTimeout(e.config.PluginTimeout))
	}
	if len(e.config.KafkaBrokers) > 0 {
		w := kafkasink.NewWriter(e.config.KafkaBrokers, e.config.KafkaTopic)
		opts = append(opts, demurrage.WithPlugin(kafkasink.New(w)))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("demurrage: configuration is required but not found in config files; " +
				"ensure 'extensions.demurrage' or 'demurrage' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("demurrage: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("block_interval", e.config.BlockInterval),
		forge.F("genesis", e.config.Genesis),
		forge.F("strict_currencies", e.config.StrictCurrencies),
		forge.F("currencies", len(e.config.Currencies)),
		forge.F("kafka", len(e.config.KafkaBrokers) > 0),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.demurrage" first (namespaced pattern).
	if cm.IsSet("extensions.demurrage") {
		err := cm.Bind("extensions.demurrage", &cfg)
		if err == nil {
			e.Logger().Debug("demurrage: loaded config from file",
				forge.F("key", "extensions.demurrage"),
			)
			return cfg, true
		}
		e.Logger().Warn("demurrage: failed to bind extensions.demurrage config",
			forge.F("error", err),
		)
	}

	// Try bare "demurrage" key.
	if cm.IsSet("demurrage") {
		err := cm.Bind("demurrage", &cfg)
		if err == nil {
			e.Logger().Debug("demurrage: loaded config from file",
				forge.F("key", "demurrage"),
			)
			return cfg, true
		}
		e.Logger().Warn("demurrage: failed to bind demurrage config",
			forge.F("error", err),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BlockInterval == 0 {
		cfg.BlockInterval = defaults.BlockInterval
	}
	if cfg.Genesis.IsZero() {
		cfg.Genesis = defaults.Genesis
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaults.KafkaTopic
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.StrictCurrencies {
		yamlConfig.StrictCurrencies = true
	}

	// Duration/time fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.BlockInterval == 0 && programmaticConfig.BlockInterval != 0 {
		yamlConfig.BlockInterval = programmaticConfig.BlockInterval
	}
	if yamlConfig.Genesis.IsZero() && !programmaticConfig.Genesis.IsZero() {
		yamlConfig.Genesis = programmaticConfig.Genesis
	}
	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	// Lists and strings: YAML takes precedence.
	if len(yamlConfig.Currencies) == 0 {
		yamlConfig.Currencies = programmaticConfig.Currencies
	}
	if len(yamlConfig.KafkaBrokers) == 0 {
		yamlConfig.KafkaBrokers = programmaticConfig.KafkaBrokers
	}
	if yamlConfig.KafkaTopic == "" {
		yamlConfig.KafkaTopic = programmaticConfig.KafkaTopic
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
