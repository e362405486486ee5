package flight

import (
	"fmt"

	"github.com/hugr-lab/pgext-go/internal/msgpack"
)

// TicketData is the decoded content of a Flight ticket: one call of an
// extension function with positional parameters.
//
// Tickets are MessagePack maps, so clients may build them directly. Params
// hold plain values (integers of any width, floats, strings, booleans,
// binary, timestamps, nil for SQL NULL, and coordinate arrays for
// geometric types).
type TicketData struct {
	Schema   string `msgpack:"schema"`
	Function string `msgpack:"function"`
	Params   []any  `msgpack:"params,omitempty"`
}

// EncodeTicket creates an opaque ticket for a function call.
func EncodeTicket(td TicketData) ([]byte, error) {
	if err := td.validate(); err != nil {
		return nil, err
	}
	data, err := msgpack.Encode(td)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	return data, nil
}

// DecodeTicket parses a ticket produced by EncodeTicket.
func DecodeTicket(ticket []byte) (*TicketData, error) {
	var td TicketData
	if err := msgpack.Decode(ticket, &td); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	if err := td.validate(); err != nil {
		return nil, err
	}
	return &td, nil
}

func (td TicketData) validate() error {
	if td.Schema == "" {
		return fmt.Errorf("%w: schema name cannot be empty", ErrInvalidTicket)
	}
	if td.Function == "" {
		return fmt.Errorf("%w: function name cannot be empty", ErrInvalidTicket)
	}
	return nil
}
