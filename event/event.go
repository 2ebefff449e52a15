// Package event defines the events a ledger emits after successful
// operations.
package event

import (
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/fixed"
	"github.com/xraph/demurrage/id"
)

// Kind names an event type.
type Kind string

// Event kinds.
const (
	KindTransferred Kind = "transferred"
	KindIssued      Kind = "issued"
	KindBurned      Kind = "burned"
	KindSlashed     Kind = "slashed"
)

// Event is implemented by every ledger event.
type Event interface {
	EventID() id.EventID
	EventKind() Kind
	EventCurrency() currency.ID
	EventBlock() uint64
}

// Header carries the fields common to all events.
type Header struct {
	ID       id.EventID  `json:"id"`
	Currency currency.ID `json:"currency"`
	Block    uint64      `json:"block"`
}

// NewHeader returns a Header with a fresh event ID.
func NewHeader(c currency.ID, block uint64) Header {
	return Header{ID: id.NewEventID(), Currency: c, Block: block}
}

// EventID implements Event.
func (h Header) EventID() id.EventID { return h.ID }

// EventCurrency implements Event.
func (h Header) EventCurrency() currency.ID { return h.Currency }

// EventBlock implements Event.
func (h Header) EventBlock() uint64 { return h.Block }

// Transferred is emitted once per successful transfer. Amount is the amount
// requested by the caller.
type Transferred struct {
	Header
	From   id.AccountID `json:"from"`
	To     id.AccountID `json:"to"`
	Amount fixed.I64F64 `json:"amount"`
}

// EventKind implements Event.
func (*Transferred) EventKind() Kind { return KindTransferred }

// Issued is emitted when new units are created in an account.
type Issued struct {
	Header
	Account id.AccountID `json:"account"`
	Amount  fixed.I64F64 `json:"amount"`
}

// EventKind implements Event.
func (*Issued) EventKind() Kind { return KindIssued }

// Burned is emitted when units are destroyed from an account.
type Burned struct {
	Header
	Account id.AccountID `json:"account"`
	Amount  fixed.I64F64 `json:"amount"`
}

// EventKind implements Event.
func (*Burned) EventKind() Kind { return KindBurned }

// Slashed is emitted for every slash, including slashes that removed
// nothing. Requested - Slashed is the shortfall returned to the caller.
type Slashed struct {
	Header
	Account   id.AccountID `json:"account"`
	Requested fixed.I64F64 `json:"requested"`
	Slashed   fixed.I64F64 `json:"slashed"`
}

// EventKind implements Event.
func (*Slashed) EventKind() Kind { return KindSlashed }

// compile-time interface checks
var (
	_ Event = (*Transferred)(nil)
	_ Event = (*Issued)(nil)
	_ Event = (*Burned)(nil)
	_ Event = (*Slashed)(nil)
)
