package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/opd-ai/peerchat/limits"
	"github.com/sirupsen/logrus"
)

// Network is the socket family used for both listening and dialing. Peers are
// addressed by IPv4 literal, matching the addresses reported by myip and list.
const Network = "tcp4"

// ListenOptions configures the listening socket.
type ListenOptions struct {
	// Host is the local address to bind. Empty binds every interface.
	Host string
	// Port is the local port. Zero asks the kernel for a free port.
	Port int
	// ReuseAddr sets SO_REUSEADDR before bind where the platform supports it.
	ReuseAddr bool
}

// Listen creates the TCP listener peers connect to.
func Listen(ctx context.Context, opts ListenOptions) (net.Listener, error) {
	address := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	logrus.WithFields(logrus.Fields{
		"function":   "Listen",
		"address":    address,
		"reuse_addr": opts.ReuseAddr,
	}).Debug("Creating TCP listener")

	lc := net.ListenConfig{}
	if opts.ReuseAddr {
		lc.Control = reuseAddrControl
	}

	listener, err := lc.Listen(ctx, Network, address)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listen",
			"address":  address,
			"error":    err.Error(),
		}).Error("Failed to create TCP listener")
		return nil, newNetError("listen", address, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Listen",
		"address":    address,
		"local_addr": listener.Addr().String(),
	}).Info("TCP listener created successfully")

	return listener, nil
}

// Dialer opens outbound peer connections.
type Dialer interface {
	Dial(ctx context.Context, host string, port int) (net.Conn, error)
}

// TCPDialer dials peers over IPv4 TCP. The zero value is ready to use and
// imposes no timeout beyond the operating system's connect timeout.
type TCPDialer struct {
	dialer net.Dialer
}

// NewTCPDialer creates a dialer for outbound peer links.
func NewTCPDialer() *TCPDialer {
	return &TCPDialer{}
}

// Dial resolves host and connects to host:port.
func (d *TCPDialer) Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	logrus.WithFields(logrus.Fields{
		"function": "TCPDialer.Dial",
		"address":  address,
	}).Debug("Dialing TCP connection")

	if err := limits.ValidatePort(port); err != nil {
		return nil, newNetError("dial", address, err)
	}

	raddr, err := ResolveAddress(host, port)
	if err != nil {
		return nil, newNetError("dial", address, err)
	}

	conn, err := d.dialer.DialContext(ctx, Network, raddr.String())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "TCPDialer.Dial",
			"address":  address,
			"error":    err.Error(),
		}).Warn("Failed to dial TCP connection")
		return nil, newNetError("dial", address, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "TCPDialer.Dial",
		"address":     address,
		"local_addr":  conn.LocalAddr().String(),
		"remote_addr": conn.RemoteAddr().String(),
	}).Info("TCP connection established")

	return conn, nil
}

// ResolveAddress turns an operator-supplied host and port into an IPv4 TCP
// address. IPv4 literals are used as-is; other hosts go through the resolver.
func ResolveAddress(host string, port int) (*net.TCPAddr, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return nil, fmt.Errorf("%w: %s is not IPv4", ErrInvalidAddress, host)
		}
		return &net.TCPAddr{IP: ip.To4(), Port: port}, nil
	}
	addr, err := net.ResolveTCPAddr(Network, net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return addr, nil
}

// PeerAddr returns the remote TCP address of conn. Connections that are not
// TCP (test doubles, pipes) yield an address parsed from RemoteAddr, or a
// zero address when that fails.
func PeerAddr(conn net.Conn) *net.TCPAddr {
	remote := conn.RemoteAddr()
	if remote == nil {
		return &net.TCPAddr{}
	}
	if tcp, ok := remote.(*net.TCPAddr); ok {
		return tcp
	}
	host, portText, err := net.SplitHostPort(remote.String())
	if err != nil {
		return &net.TCPAddr{}
	}
	port, _ := strconv.Atoi(portText)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: port}
}

// ListenPort returns the port a listener is bound to.
func ListenPort(l net.Listener) int {
	if tcp, ok := l.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
