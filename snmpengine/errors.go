package snmpengine

import "errors"

// Error taxonomy per spec.md §7. NoSuchObject and EndOfMib are normal
// control-flow outcomes a plugin may catch with errors.Is; BackendError
// signals an unexpected transport/protocol failure.
var (
	// ErrNoSuchObject means the queried OID has no bound instance at the
	// agent.
	ErrNoSuchObject = errors.New("snmpengine: no such object")

	// ErrEndOfMib means no OID strictly greater than the one queried
	// exists in the agent's MIB.
	ErrEndOfMib = errors.New("snmpengine: end of mib")

	// ErrBackend wraps an unexpected transport or protocol failure, or a
	// backend response that violates the GETBULK contract (e.g. returning
	// more bindings than requested, or a binding smaller than the query
	// that produced it).
	ErrBackend = errors.New("snmpengine: backend error")
)
