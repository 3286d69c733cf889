package registry

import (
	"net"

	"github.com/google/uuid"
	"github.com/opd-ai/peerchat/transport"
)

// Connection is one established TCP peer link. It exclusively owns its socket
// until Close, after which the socket is never used again.
//
// A Connection does not know its id: ids are registry positions and change
// when an entry with a lower index is removed.
type Connection struct {
	conn   net.Conn
	addr   *net.TCPAddr
	tag    uuid.UUID
	codec  transport.Codec
	closed bool
}

// NewConnection wraps an established socket. A nil codec selects raw framing.
func NewConnection(conn net.Conn, codec transport.Codec) *Connection {
	if codec == nil {
		codec = transport.RawCodec{}
	}
	return &Connection{
		conn:  conn,
		addr:  transport.PeerAddr(conn),
		tag:   uuid.New(),
		codec: codec,
	}
}

// Socket returns the underlying socket handle.
func (c *Connection) Socket() net.Conn {
	return c.conn
}

// Addr returns the peer's address.
func (c *Connection) Addr() *net.TCPAddr {
	return c.addr
}

// IP returns the peer's IP address in text form.
func (c *Connection) IP() string {
	if c.addr.IP == nil {
		return ""
	}
	return c.addr.IP.String()
}

// Port returns the peer's TCP port.
func (c *Connection) Port() int {
	return c.addr.Port
}

// Tag returns a random identifier that stays with this link for its whole
// life. It is only used to correlate log lines.
func (c *Connection) Tag() uuid.UUID {
	return c.tag
}

// Send writes one message with a single write call.
func (c *Connection) Send(msg []byte) error {
	if c.closed {
		return transport.ErrConnectionClosed
	}
	return c.codec.WriteMessage(c.conn, msg)
}

// Receive performs one logical receive into buf. It is safe to call from a
// goroutine other than the registry owner; closing the socket unblocks it.
func (c *Connection) Receive(buf []byte) ([]byte, error) {
	return c.codec.ReadMessage(c.conn, buf)
}

// Close closes the socket. Only the first call reaches the socket.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	return c.closed
}
