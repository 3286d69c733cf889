// Package limits provides centralized capacity, buffer and size constants and
// the validation functions that go with them.
//
// # Values
//
//   - DefaultCapacity (10): maximum simultaneous peer connections per instance.
//
//   - ReceiveBufferSize (1024 bytes): the buffer given to one receive call in raw
//     wire mode. Raw TCP has no message boundaries, so a single receive is treated
//     as one message and longer sends arrive split.
//
//   - MaxFrameSize (64 KiB): the payload cap for the opt-in length-prefixed wire
//     mode. Declared lengths above this close the link.
//
// # Validation Functions
//
//	if err := limits.ValidatePort(port); err != nil {
//	    // errors.Is(err, limits.ErrInvalidPort)
//	}
//
//	err := limits.ValidateMessageSize(data, 4096)
//
// Errors wrap the package sentinels (ErrMessageEmpty, ErrMessageTooLarge,
// ErrInvalidPort, ErrInvalidCapacity) so callers can match them with errors.Is.
package limits
