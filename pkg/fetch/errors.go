package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch operations.
var (
	// ErrNotFound is returned when a tile doesn't exist on the server.
	ErrNotFound = errors.New("tile not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrNotImage is returned when a response body cannot be decoded as an image.
	ErrNotImage = errors.New("response is not an image")
)

// Error is a failed tile fetch. It carries the offending URL alongside the
// underlying transport or decode error so callers can report exactly which
// tile broke a render.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
