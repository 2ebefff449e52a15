package currency

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xraph/demurrage/fixed"
)

var (
	// ErrDuplicate is returned when a currency is registered twice.
	ErrDuplicate = errors.New("currency: already registered")

	// ErrInvalidRate is returned for negative rates or a zero half-life.
	ErrInvalidRate = errors.New("currency: invalid demurrage rate")
)

// Registry supplies per-currency demurrage rates. Rates are per tick and
// never negative.
type Registry interface {
	// RateOf returns the demurrage rate of c. Unknown currencies have rate 0.
	RateOf(c ID) fixed.I64F64

	// Exists reports whether c is registered.
	Exists(c ID) bool
}

// Properties describes a registered currency.
type Properties struct {
	ID   ID           `json:"id"`
	Name string       `json:"name"`
	Rate fixed.I64F64 `json:"rate"`
}

// RateFromHalfLife returns ln(2)/blocks: the rate at which a balance halves
// every blocks ticks.
//
// The quotient is truncated to 2^-64, so the factor observed after one
// half-life exceeds 0.5 by up to about blocks·2^-65. That stays below 1e-12
// for half-lives under ~3.7e7 blocks; at 2^31 blocks it can reach ~6e-11.
func RateFromHalfLife(blocks uint64) (fixed.I64F64, error) {
	if blocks == 0 || blocks > 1<<62 {
		return fixed.Zero, fmt.Errorf("%w: half-life %d", ErrInvalidRate, blocks)
	}
	rate, ok := fixed.Ln2.CheckedDiv(fixed.FromInt(int64(blocks)))
	if !ok {
		return fixed.Zero, fmt.Errorf("%w: half-life %d", ErrInvalidRate, blocks)
	}
	return rate, nil
}

// compile-time interface check
var _ Registry = (*Static)(nil)

// Static is an in-memory Registry. It is safe for concurrent use.
type Static struct {
	mu     sync.RWMutex
	byID   map[ID]Properties
	byName map[string]ID
}

// NewStatic returns an empty Static registry.
func NewStatic() *Static {
	return &Static{
		byID:   make(map[ID]Properties),
		byName: make(map[string]ID),
	}
}

// Register adds a currency. An empty ID is derived from the name.
func (s *Static) Register(p Properties) (ID, error) {
	if p.Rate.IsNegative() {
		return ID{}, fmt.Errorf("%w: %s has rate %s", ErrInvalidRate, p.Name, p.Rate)
	}
	if p.ID.IsZero() {
		p.ID = NewID([]byte(p.Name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.ID]; exists {
		return ID{}, fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	if p.Name != "" {
		if _, exists := s.byName[p.Name]; exists {
			return ID{}, fmt.Errorf("%w: %s", ErrDuplicate, p.Name)
		}
		s.byName[p.Name] = p.ID
	}
	s.byID[p.ID] = p
	return p.ID, nil
}

// RateOf implements Registry.
func (s *Static) RateOf(c ID) fixed.I64F64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[c].Rate
}

// Exists implements Registry.
func (s *Static) Exists(c ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[c]
	return ok
}

// Get returns the properties of c.
func (s *Static) Get(c ID) (Properties, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[c]
	return p, ok
}

// Lookup resolves a currency by name.
func (s *Static) Lookup(name string) (ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byName[name]
	return c, ok
}

// List returns all registered currencies ordered by name.
func (s *Static) List() []Properties {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Properties, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
