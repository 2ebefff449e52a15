// Package currency identifies currencies and supplies their demurrage rates.
//
// The ledger consumes currencies through the Registry interface. Static is a
// ready-made in-memory Registry that can be populated programmatically or
// from a YAML file.
package currency

import (
	"database/sql/driver"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// IDSize is the length of a currency identifier in bytes.
const IDSize = 32

// ID is an opaque 32-byte currency identifier, usually a content hash of the
// currency's descriptor. Its text form is base58.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID [IDSize]byte

// NewID derives an ID from a descriptor using BLAKE2b-256.
func NewID(descriptor []byte) ID {
	return ID(blake2b.Sum256(descriptor))
}

// ParseID parses the base58 text form of an ID.
func ParseID(s string) (ID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return ID{}, fmt.Errorf("currency: parse id %q: %w", s, err)
	}
	if len(raw) != IDSize {
		return ID{}, fmt.Errorf("currency: parse id %q: want %d bytes, got %d", s, IDSize, len(raw))
	}
	var c ID
	copy(c[:], raw)
	return c, nil
}

// MustParseID is like ParseID but panics on error.
func MustParseID(s string) ID {
	c, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the base58 form of c.
func (c ID) String() string {
	return base58.Encode(c[:])
}

// IsZero reports whether c is the all-zero ID.
func (c ID) IsZero() bool {
	return c == ID{}
}

// MarshalText implements encoding.TextMarshaler.
func (c ID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ID) UnmarshalText(data []byte) error {
	parsed, err := ParseID(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c ID) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *ID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("currency: cannot scan %T into ID", src)
	}
}
