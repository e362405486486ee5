package flight

import "errors"

var (
	// ErrInvalidTicket is returned for a ticket that does not decode to a
	// function call.
	ErrInvalidTicket = errors.New("invalid ticket")
	// ErrInvalidDescriptor is returned for a descriptor that names no function.
	ErrInvalidDescriptor = errors.New("invalid flight descriptor")
)
