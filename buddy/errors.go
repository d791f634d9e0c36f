package buddy

import "errors"

var (
	// ErrInvalidConfig is returned by New for a bad unit size or max order.
	ErrInvalidConfig = errors.New("buddy: invalid config")

	// ErrInvalidOrder is returned by AllocOrder for an out-of-range order.
	ErrInvalidOrder = errors.New("buddy: order out of range")

	// ErrInvalidSize is returned by Alloc when the requested size is not the
	// unit size scaled by an in-range power of two.
	ErrInvalidSize = errors.New("buddy: invalid size")

	// ErrOutOfMemory is returned when no block of sufficient or higher order
	// is free. It is an expected outcome, not a corruption signal.
	ErrOutOfMemory = errors.New("buddy: out of memory")

	// ErrInvalidHandle is returned by Free and the handle accessors for a
	// handle that does not reference a currently allocated block. This covers
	// double frees, handles from another arena and forged handles.
	ErrInvalidHandle = errors.New("buddy: invalid handle")
)
