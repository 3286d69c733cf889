package transport

import (
	"errors"
	"fmt"
)

// Common errors for peer networking
var (
	// ErrConnectionClosed indicates the connection has been closed
	ErrConnectionClosed = errors.New("connection closed")

	// ErrPartialWrite indicates only part of the data was written by the single
	// write call. The remainder is not resent.
	ErrPartialWrite = errors.New("partial write")

	// ErrInvalidAddress indicates a host that is neither an IPv4 literal nor resolvable
	ErrInvalidAddress = errors.New("invalid IP address")

	// ErrUnknownFraming indicates a wire mode name with no codec
	ErrUnknownFraming = errors.New("unknown framing")
)

// NetError represents a network error with the operation and peer address
// that produced it.
type NetError struct {
	Op   string // operation that caused the error
	Addr string // address if relevant
	Err  error  // underlying error
}

func (e *NetError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetError) Unwrap() error {
	return e.Err
}

// newNetError creates a new NetError
func newNetError(op, addr string, err error) *NetError {
	return &NetError{
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
