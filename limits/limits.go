// Package limits provides centralized capacity and size limits for peerchat.
// This ensures consistent validation across the registry, codecs and commands.
package limits

import (
	"errors"
	"fmt"
)

const (
	// DefaultCapacity is the maximum number of simultaneous peer connections
	// an instance keeps when no capacity is configured.
	DefaultCapacity = 10

	// ReceiveBufferSize is the size of the buffer handed to a single receive
	// call in raw wire mode. One receive is one message, so a message longer
	// than this is delivered in pieces.
	ReceiveBufferSize = 1024

	// MaxFrameSize is the largest payload accepted in length-prefixed mode.
	// A larger declared length closes the link rather than allocating.
	MaxFrameSize = 64 * 1024

	// FrameHeaderSize is the size of the big-endian length prefix.
	FrameHeaderSize = 4

	// MinPort and MaxPort bound TCP port numbers accepted from operators.
	MinPort = 1
	MaxPort = 65535
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrInvalidPort indicates a port outside MinPort..MaxPort
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidCapacity indicates a non-positive connection capacity
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidateFrame validates a length-prefixed payload against MaxFrameSize.
func ValidateFrame(message []byte) error {
	return ValidateMessageSize(message, MaxFrameSize)
}

// ValidatePort reports whether port is a usable TCP port number.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidPort, port, MinPort, MaxPort)
	}
	return nil
}

// ValidateCapacity reports whether capacity can size a registry.
func ValidateCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return nil
}
