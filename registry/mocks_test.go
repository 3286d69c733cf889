package registry

import (
	"bytes"
	"errors"
	"net"
	"time"
)

// mockConn is a net.Conn that records writes and close calls.
type mockConn struct {
	remote     *net.TCPAddr
	written    bytes.Buffer
	writes     int
	closeCalls int
	writeErr   error
}

func newMockConn(ip string, port int) *mockConn {
	return &mockConn{remote: &net.TCPAddr{IP: net.ParseIP(ip), Port: port}}
}

func (m *mockConn) Read(b []byte) (int, error) { return 0, errors.New("mockConn: read not supported") }

func (m *mockConn) Write(b []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes++
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
