// Package transport provides the TCP plumbing peerchat instances use to reach
// each other: the listening socket, outbound dialing, wire codecs and local
// address discovery.
//
// # Listening and Dialing
//
// Instances listen and dial over IPv4 TCP:
//
//	listener, err := transport.Listen(ctx, transport.ListenOptions{Port: 9000, ReuseAddr: true})
//	conn, err := transport.NewTCPDialer().Dial(ctx, "192.168.1.20", 9000)
//
// Failures are returned as *NetError carrying the operation and address, and
// wrap the underlying cause (limits.ErrInvalidPort, ErrInvalidAddress or the
// operating system error), so callers can report the specific reason.
//
// # Wire Codecs
//
// RawCodec is the default wire contract: no length prefix and no delimiter.
// Each receive is one Read call into a fixed buffer and is treated as one
// message. This does not hold for TCP in general (sends may coalesce or split)
// and is a known limitation of the raw mode.
//
// LengthPrefixedCodec is opt-in. Every message carries a 4-byte big-endian
// length and reads use io.ReadFull, so message boundaries survive partial
// reads. Both peers must use the same codec.
//
// Writes in both modes are a single Write call. A short write is reported as
// ErrPartialWrite and the remainder is never resent.
//
// # Local Address
//
// LocalIPv4 returns the first non-loopback IPv4 address of an interface that
// is up, for display to the operator.
package transport
