package peer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// mockConn is a net.Conn serving scripted reads and recording writes.
type mockConn struct {
	remote     *net.TCPAddr
	reads      [][]byte
	written    bytes.Buffer
	maxWrite   int
	closeCalls int
}

func newMockConn(ip string, port int) *mockConn {
	return &mockConn{remote: &net.TCPAddr{IP: net.ParseIP(ip), Port: port}}
}

func (m *mockConn) Read(b []byte) (int, error) {
	if len(m.reads) == 0 {
		return 0, io.EOF
	}
	n := copy(b, m.reads[0])
	m.reads = m.reads[1:]
	return n, nil
}

func (m *mockConn) Write(b []byte) (int, error) {
	if m.maxWrite > 0 && len(b) > m.maxWrite {
		b = b[:m.maxWrite]
	}
	return m.written.Write(b)
}

func (m *mockConn) Close() error {
	m.closeCalls++
	return nil
}

func (m *mockConn) LocalAddr() net.Addr                { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000} }
func (m *mockConn) RemoteAddr() net.Addr               { return m.remote }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

// mockDialer returns a scripted connection or error.
type mockDialer struct {
	conn  net.Conn
	err   error
	calls int
	host  string
	port  int
}

func (d *mockDialer) Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	d.calls++
	d.host, d.port = host, port
	if d.err != nil {
		return nil, d.err
	}
	if d.conn == nil {
		return nil, errors.New("mockDialer: no connection scripted")
	}
	return d.conn, nil
}
