package peer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/opd-ai/peerchat/console"
	"github.com/opd-ai/peerchat/limits"
	"github.com/opd-ai/peerchat/observability"
	"github.com/opd-ai/peerchat/registry"
	"github.com/opd-ai/peerchat/transport"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConnectFailure wraps every reason an outbound connection could not
	// be established (bad address, bad port, refused, unreachable).
	ErrConnectFailure = errors.New("connection failed")

	// ErrAcceptFailure wraps listener accept errors. They are transient.
	ErrAcceptFailure = errors.New("accept failed")
)

// Watcher starts delivering receives for a newly registered connection. The
// event loop supplies one that runs Receive on a goroutine and posts each
// result back to the loop.
type Watcher func(c *registry.Connection)

// Options configures a Handler. Nil fields take defaults.
type Options struct {
	// Dialer opens outbound links. Defaults to transport.NewTCPDialer().
	Dialer transport.Dialer
	// Codec frames every link. Defaults to raw.
	Codec transport.Codec
	// Metrics records connection and message counts. May be nil.
	Metrics *observability.Metrics
	// Watch is called for every registered connection. May be nil.
	Watch Watcher
}

// Handler performs peer I/O on behalf of the event loop: accepting and dialing
// links, delivering receives and sending operator messages.
//
// All methods except Receive must be called from the goroutine that owns the
// registry.
type Handler struct {
	registry *registry.Registry
	out      *console.Printer
	dialer   transport.Dialer
	codec    transport.Codec
	metrics  *observability.Metrics
	watch    Watcher
}

// NewHandler creates a Handler over reg that reports to out.
func NewHandler(reg *registry.Registry, out *console.Printer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	h := &Handler{
		registry: reg,
		out:      out,
		dialer:   opts.Dialer,
		codec:    opts.Codec,
		metrics:  opts.Metrics,
		watch:    opts.Watch,
	}
	if h.dialer == nil {
		h.dialer = transport.NewTCPDialer()
	}
	if h.codec == nil {
		h.codec = transport.RawCodec{}
	}
	if h.watch == nil {
		h.watch = func(*registry.Connection) {}
	}
	return h
}

// SetWatcher replaces the watcher. The event loop calls it once during setup.
func (h *Handler) SetWatcher(w Watcher) {
	if w == nil {
		w = func(*registry.Connection) {}
	}
	h.watch = w
}

// Accept registers a socket returned by the listener. When the registry is
// full the socket is closed immediately and ErrCapacityExceeded is returned.
func (h *Handler) Accept(conn net.Conn) error {
	c := registry.NewConnection(conn, h.codec)
	if _, err := h.register(c, observability.Inbound); err != nil {
		if errors.Is(err, registry.ErrCapacityExceeded) {
			c.Close()
			h.out.Printf("Maximum clients reached. Connection rejected: %s:%d", c.IP(), c.Port())
		}
		return err
	}
	h.out.Printf("Accepted a new connection from address: %s, setup at port: %d", c.IP(), c.Port())
	return nil
}

// AcceptFailed reports a failed accept and returns it wrapped in
// ErrAcceptFailure. The loop keeps running.
func (h *Handler) AcceptFailed(err error) error {
	h.metrics.AcceptFailed()
	logrus.WithFields(logrus.Fields{
		"function": "Handler.AcceptFailed",
		"error":    err.Error(),
	}).Warn("Accept failed")
	h.out.Printf("Accept failed: %v", err)
	return fmt.Errorf("%w: %w", ErrAcceptFailure, err)
}

// Connect dials host:port and registers the new link. Dial failures are
// returned wrapped in ErrConnectFailure with no side effect. A full registry
// closes the new socket and returns ErrCapacityExceeded.
func (h *Handler) Connect(ctx context.Context, host string, port int) (int, error) {
	conn, err := h.dialer.Dial(ctx, host, port)
	if err != nil {
		h.metrics.ConnectFailed()
		return -1, fmt.Errorf("%w: %w", ErrConnectFailure, err)
	}

	c := registry.NewConnection(conn, h.codec)
	id, err := h.register(c, observability.Outbound)
	if err != nil {
		if errors.Is(err, registry.ErrCapacityExceeded) {
			c.Close()
		}
		return -1, err
	}
	return id, nil
}

func (h *Handler) register(c *registry.Connection, direction string) (int, error) {
	id, err := h.registry.Add(c)
	if err != nil {
		h.metrics.ConnectionRejected(direction)
		logrus.WithFields(logrus.Fields{
			"function":  "Handler.register",
			"direction": direction,
			"peer":      c.Addr().String(),
			"error":     err.Error(),
		}).Warn("Connection not registered")
		return -1, err
	}

	h.metrics.ConnectionEstablished(direction)
	h.metrics.SetActive(h.registry.Len())
	logrus.WithFields(logrus.Fields{
		"function":  "Handler.register",
		"direction": direction,
		"id":        id,
		"tag":       c.Tag().String(),
		"peer":      c.Addr().String(),
	}).Info("Peer connected")

	h.watch(c)
	return id, nil
}

// Received is the outcome of one receive call on a connection.
type Received struct {
	Conn *registry.Connection
	Data []byte
	Err  error
}

// PeerClosed reports whether the receive ended the link. A zero-byte receive
// and a receive error are treated alike.
func (r Received) PeerClosed() bool {
	return r.Err != nil || len(r.Data) == 0
}

// Receive performs exactly one receive on c. It blocks, touches no registry
// state, and is meant to run on the connection's watcher goroutine.
func Receive(c *registry.Connection, buf []byte) Received {
	data, err := c.Receive(buf)
	return Received{Conn: c, Data: data, Err: err}
}

// Deliver acts on a receive result: data is shown to the operator, a closed
// peer is removed from the registry. Results for connections that are no
// longer registered are dropped and false is returned.
func (h *Handler) Deliver(r Received) bool {
	id, ok := h.registry.FindBySocket(r.Conn.Socket())
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "Handler.Deliver",
			"tag":      r.Conn.Tag().String(),
		}).Debug("Dropping receive for removed connection")
		return false
	}

	if r.PeerClosed() {
		fields := logrus.Fields{
			"function": "Handler.Deliver",
			"id":       id,
			"tag":      r.Conn.Tag().String(),
			"peer":     r.Conn.Addr().String(),
		}
		if r.Err != nil && !errors.Is(r.Err, io.EOF) {
			fields["error"] = r.Err.Error()
		}
		logrus.WithFields(fields).Info("Peer closed connection")

		h.out.Printf("The peer at %s:%d has disconnected", r.Conn.IP(), r.Conn.Port())
		h.metrics.PeerClosed()
		h.registry.Remove(id)
		h.metrics.SetActive(h.registry.Len())
		return true
	}

	h.metrics.MessageReceived(len(r.Data))
	h.out.Message(r.Conn.IP(), r.Conn.Port(), r.Data)
	return true
}

// SendTo sends msg to connection id with a single write.
func (h *Handler) SendTo(id int, msg []byte) error {
	c, err := h.registry.Get(id)
	if err != nil {
		return err
	}
	if len(msg) == 0 {
		return limits.ErrMessageEmpty
	}

	if err := c.Send(msg); err != nil {
		h.metrics.SendFailed()
		logrus.WithFields(logrus.Fields{
			"function": "Handler.SendTo",
			"id":       id,
			"tag":      c.Tag().String(),
			"error":    err.Error(),
		}).Warn("Send failed")
		return fmt.Errorf("send to %s: %w", c.Addr(), err)
	}

	h.metrics.MessageSent()
	return nil
}

// Terminate removes connection id on operator request.
func (h *Handler) Terminate(id int) error {
	if err := h.registry.Remove(id); err != nil {
		return err
	}
	h.metrics.Terminated()
	h.metrics.SetActive(h.registry.Len())
	return nil
}

// List returns the current connection table.
func (h *Handler) List() []registry.Entry {
	return h.registry.List()
}

// CloseAll closes every connection without notices.
func (h *Handler) CloseAll() int {
	n := h.registry.CloseAll()
	h.metrics.SetActive(0)
	return n
}
