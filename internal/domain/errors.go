package domain

import "errors"

// Error taxonomy per spec §7. Packages higher up the stack (dispatcher,
// httpapi) map these to ack-error-fields or unicast error events; nothing
// below the dispatcher talks to a connection directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflicting state")
	ErrEchoSuppress = errors.New("echo suppressed")
)
