package streaming

import "errors"

// Data-path conditions returned by Read, Write, Status, Activate and
// Deactivate. Setup and close failures are returned as wrapped descriptive
// errors instead.
var (
	// ErrTimeout means the call did not complete in time. Recoverable; the
	// pending receive command, if any, stays queued for retry.
	ErrTimeout = errors.New("stream operation timed out")

	// ErrStream means a synchronous transfer failed. Finite receive
	// commands are discarded; open-ended ones survive for retry.
	ErrStream = errors.New("stream transfer failed")

	// ErrOverflow reports a prior receive overrun. The accompanying Meta
	// carries the boundary time. Informational, never fatal.
	ErrOverflow = errors.New("receive overflow")

	// ErrUnderflow reports a transmit underrun through Status polls.
	// Informational, never fatal.
	ErrUnderflow = errors.New("transmit underflow")

	// ErrNotSupported is returned for non-zero flags where none are
	// supported. No state changes.
	ErrNotSupported = errors.New("option not supported")
)
