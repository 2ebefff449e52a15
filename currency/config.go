package currency

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xraph/demurrage/fixed"
)

// Config describes one currency in a configuration file. Exactly one of
// HalfLifeBlocks and DemurragePerBlock sets the rate; neither means the
// currency does not decay.
type Config struct {
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// ID is the base58 currency ID. Derived from Name when empty.
	ID string `json:"id" mapstructure:"id" yaml:"id"`

	// HalfLifeBlocks is the number of ticks after which a balance halves.
	HalfLifeBlocks uint64 `json:"half_life_blocks" mapstructure:"half_life_blocks" yaml:"half_life_blocks"`

	// DemurragePerBlock is the raw decimal rate per tick.
	DemurragePerBlock string `json:"demurrage_per_block" mapstructure:"demurrage_per_block" yaml:"demurrage_per_block"`
}

// Properties resolves the configured rate and ID.
func (c Config) Properties() (Properties, error) {
	p := Properties{Name: c.Name}

	if c.ID != "" {
		parsed, err := ParseID(c.ID)
		if err != nil {
			return p, err
		}
		p.ID = parsed
	}

	switch {
	case c.HalfLifeBlocks != 0 && c.DemurragePerBlock != "":
		return p, fmt.Errorf("%w: %s sets both half_life_blocks and demurrage_per_block", ErrInvalidRate, c.Name)
	case c.HalfLifeBlocks != 0:
		rate, err := RateFromHalfLife(c.HalfLifeBlocks)
		if err != nil {
			return p, err
		}
		p.Rate = rate
	case c.DemurragePerBlock != "":
		rate, err := fixed.Parse(c.DemurragePerBlock)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %w", ErrInvalidRate, c.Name, err)
		}
		p.Rate = rate
	}
	return p, nil
}

// File is the top-level layout of a currency file:
//
//	currencies:
//	  - name: mana
//	    half_life_blocks: 6307200
type File struct {
	Currencies []Config `yaml:"currencies"`
}

// FromConfig builds a Static registry from a list of currency configs.
func FromConfig(cfgs []Config) (*Static, error) {
	s := NewStatic()
	for _, cfg := range cfgs {
		p, err := cfg.Properties()
		if err != nil {
			return nil, err
		}
		if _, err := s.Register(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load parses YAML currency definitions.
func Load(data []byte) (*Static, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("currency: decode yaml: %w", err)
	}
	return FromConfig(f.Currencies)
}

// LoadFile reads and parses a YAML currency file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("currency: read %s: %w", path, err)
	}
	return Load(data)
}
