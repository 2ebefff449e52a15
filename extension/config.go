package extension

import (
	"time"

	"github.com/xraph/demurrage/currency"
)

// Config holds the demurrage extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.demurrage" or "demurrage" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BlockInterval is the wall-clock length of one tick (default: 5s).
	BlockInterval time.Duration `json:"block_interval" mapstructure:"block_interval" yaml:"block_interval"`

	// Genesis is the instant of tick 0 (default: the Unix epoch).
	Genesis time.Time `json:"genesis" mapstructure:"genesis" yaml:"genesis"`

	// StrictCurrencies rejects operations on unconfigured currencies.
	StrictCurrencies bool `json:"strict_currencies" mapstructure:"strict_currencies" yaml:"strict_currencies"`

	// PluginTimeout bounds each plugin hook (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// Currencies lists the currencies and their decay rates.
	Currencies []currency.Config `json:"currencies" mapstructure:"currencies" yaml:"currencies"`

	// KafkaBrokers enables the Kafka event sink when non-empty.
	KafkaBrokers []string `json:"kafka_brokers" mapstructure:"kafka_brokers" yaml:"kafka_brokers"`

	// KafkaTopic is the topic events are published to (default: "demurrage.events").
	KafkaTopic string `json:"kafka_topic" mapstructure:"kafka_topic" yaml:"kafka_topic"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BlockInterval: 5 * time.Second,
		Genesis:       time.Unix(0, 0).UTC(),
		PluginTimeout: 5 * time.Second,
		KafkaTopic:    "demurrage.events",
	}
}
