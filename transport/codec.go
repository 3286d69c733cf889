package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opd-ai/peerchat/limits"
)

// Wire mode names accepted by NewCodec.
const (
	FramingRaw            = "raw"
	FramingLengthPrefixed = "length-prefixed"
)

// Codec moves one logical message across a stream.
type Codec interface {
	// Name returns the wire mode name.
	Name() string
	// ReadMessage performs one logical receive from r. buf is scratch space
	// owned by the caller; the returned slice never aliases it. A zero-byte
	// receive is reported as io.EOF.
	ReadMessage(r io.Reader, buf []byte) ([]byte, error)
	// WriteMessage issues exactly one Write call for msg.
	WriteMessage(w io.Writer, msg []byte) error
}

// NewCodec returns the codec for a wire mode name. An empty name selects raw.
func NewCodec(framing string) (Codec, error) {
	switch framing {
	case "", FramingRaw:
		return RawCodec{}, nil
	case FramingLengthPrefixed:
		return LengthPrefixedCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFraming, framing)
	}
}

// RawCodec is the unframed wire contract: whatever a single Read returns is
// one message. TCP does not preserve send boundaries, so coalesced or split
// sends are delivered as the kernel hands them over.
type RawCodec struct{}

// Name implements Codec.
func (RawCodec) Name() string { return FramingRaw }

// ReadMessage implements Codec with a single Read into buf.
func (RawCodec) ReadMessage(r io.Reader, buf []byte) ([]byte, error) {
	n, err := r.Read(buf)
	if n <= 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	msg := make([]byte, n)
	copy(msg, buf[:n])
	return msg, nil
}

// WriteMessage implements Codec.
func (RawCodec) WriteMessage(w io.Writer, msg []byte) error {
	return writeOnce(w, msg)
}

// LengthPrefixedCodec frames each message with a 4-byte big-endian length.
// Reads use full-read semantics so partial reads never split a message.
type LengthPrefixedCodec struct{}

// Name implements Codec.
func (LengthPrefixedCodec) Name() string { return FramingLengthPrefixed }

// ReadMessage implements Codec. buf is unused; frames are allocated to size.
func (LengthPrefixedCodec) ReadMessage(r io.Reader, _ []byte) ([]byte, error) {
	header := make([]byte, limits.FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length == 0 {
		return nil, limits.ErrMessageEmpty
	}
	if length > limits.MaxFrameSize {
		return nil, fmt.Errorf("%w: declared %d exceeds limit %d", limits.ErrMessageTooLarge, length, limits.MaxFrameSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}
	return data, nil
}

// WriteMessage implements Codec. Header and payload go out in one Write.
func (LengthPrefixedCodec) WriteMessage(w io.Writer, msg []byte) error {
	if err := limits.ValidateFrame(msg); err != nil {
		return err
	}
	frame := make([]byte, limits.FrameHeaderSize+len(msg))
	binary.BigEndian.PutUint32(frame, uint32(len(msg)))
	copy(frame[limits.FrameHeaderSize:], msg)
	return writeOnce(w, frame)
}

// writeOnce issues a single Write. A short write is reported, never resent.
func writeOnce(w io.Writer, data []byte) error {
	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n < len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrPartialWrite, n, len(data))
	}
	return nil
}
