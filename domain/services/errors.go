package services

import "errors"

// Settlement precondition and failure sentinels. Precondition violations are
// no-ops for the caller: the poller logs and moves on.
var (
	// ErrAlreadySettled means the draw, trade or round already reached a
	// terminal state. A duplicate trigger safely no-ops on this.
	ErrAlreadySettled = errors.New("already settled")

	// ErrNotDue means the entity has not reached its resolution point yet
	ErrNotDue = errors.New("not due for settlement")

	// ErrCancelled means the entity was externally cancelled before
	// becoming due
	ErrCancelled = errors.New("cancelled")

	// ErrPriceUnavailable means no resolving price could be obtained within
	// the bounded wait; the trade takes the terminal error path
	ErrPriceUnavailable = errors.New("no resolving price available")

	// ErrRandomSource means the cryptographic random source failed. The
	// allocation attempt aborts; there is no weaker fallback.
	ErrRandomSource = errors.New("random source failure")

	// ErrNotFound means the referenced entity does not exist
	ErrNotFound = errors.New("not found")
)
