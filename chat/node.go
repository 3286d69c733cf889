package chat

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/opd-ai/peerchat/command"
	"github.com/opd-ai/peerchat/config"
	"github.com/opd-ai/peerchat/console"
	"github.com/opd-ai/peerchat/observability"
	"github.com/opd-ai/peerchat/peer"
	"github.com/opd-ai/peerchat/registry"
	"github.com/opd-ai/peerchat/transport"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	eventQueueSize = 64

	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Options configures a Node. Nil fields take defaults.
type Options struct {
	// Input supplies console lines. Defaults to os.Stdin.
	Input io.Reader
	// Output receives operator output. Defaults to os.Stdout.
	Output io.Writer
	// Dialer opens outbound links. Defaults to a TCP dialer.
	Dialer transport.Dialer
	// Metrics records activity. Created automatically when MetricsAddr is set.
	Metrics *observability.Metrics
	// LocalIP reports this host's address for myip. Defaults to
	// transport.LocalIPv4.
	LocalIP func() (net.IP, error)
}

// Node is one chat instance: a listener, a bounded set of peer connections and
// the operator console, all driven by a single event loop.
type Node struct {
	cfg     *config.Config
	input   io.Reader
	out     *console.Printer
	metrics *observability.Metrics
	localIP func() (net.IP, error)

	registry *registry.Registry
	handler  *peer.Handler
	interp   *command.Interpreter

	listener net.Listener
	events   chan event

	// runCtx and stop are set by Run and used only by the loop goroutine.
	runCtx context.Context
	stop   context.CancelFunc

	shutdownOnce sync.Once
}

// New creates a Node from cfg. It does not open any socket.
func New(cfg *config.Config, opts *Options) (*Node, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	codec, err := transport.NewCodec(cfg.Framing)
	if err != nil {
		return nil, err
	}

	n := &Node{
		cfg:      cfg,
		input:    opts.Input,
		metrics:  opts.Metrics,
		localIP:  opts.LocalIP,
		registry: registry.New(cfg.Capacity),
		events:   make(chan event, eventQueueSize),
	}
	if n.input == nil {
		n.input = os.Stdin
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	n.out = console.NewPrinter(output)
	if n.localIP == nil {
		n.localIP = transport.LocalIPv4
	}
	if n.metrics == nil && cfg.MetricsAddr != "" {
		n.metrics = observability.NewMetrics()
	}

	n.handler = peer.NewHandler(n.registry, n.out, &peer.Options{
		Dialer:  opts.Dialer,
		Codec:   codec,
		Metrics: n.metrics,
	})
	n.handler.SetWatcher(n.watch)
	n.interp = command.NewInterpreter(actions{n}, n.out)
	return n, nil
}

// Listen opens the listening socket. Run calls it if it has not been called.
func (n *Node) Listen(ctx context.Context) error {
	if n.listener != nil {
		return nil
	}
	l, err := transport.Listen(ctx, transport.ListenOptions{
		Host:      n.cfg.ListenHost,
		Port:      n.cfg.Port,
		ReuseAddr: n.cfg.ReuseAddr,
	})
	if err != nil {
		return err
	}
	n.listener = l
	return nil
}

// Addr returns the listener address, or nil before Listen.
func (n *Node) Addr() net.Addr {
	if n.listener == nil {
		return nil
	}
	return n.listener.Addr()
}

// Metrics returns the node's metrics, or nil when none are recorded.
func (n *Node) Metrics() *observability.Metrics {
	return n.metrics
}

// Run serves the console, the listener and every peer until the operator
// enters exit or ctx is cancelled. Either way all sockets are closed and nil
// is returned. Run must be called once.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Listen(ctx); err != nil {
		return err
	}

	ctx, n.stop = context.WithCancel(ctx)
	defer n.stop()
	n.runCtx = ctx

	g, gctx := errgroup.WithContext(ctx)

	n.out.Menu()
	n.out.Printf("Application is listening on port %d", transport.ListenPort(n.listener))
	n.out.Prompt()

	g.Go(func() error { return n.loop(gctx) })
	g.Go(func() error { return n.acceptLoop(gctx) })
	if n.cfg.MetricsAddr != "" {
		srv := observability.NewServer(n.metrics)
		g.Go(func() error { return srv.Serve(gctx, n.cfg.MetricsAddr) })
	}

	// A blocked console read cannot be interrupted, so the reader is not part
	// of the group. It exits on its next line once the context is done.
	go n.readConsole(gctx)

	err := g.Wait()
	n.shutdown()
	return err
}

func (n *Node) post(ctx context.Context, ev event) bool {
	select {
	case n.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (n *Node) readConsole(ctx context.Context) {
	scanner := bufio.NewScanner(n.input)
	for scanner.Scan() {
		if !n.post(ctx, event{kind: eventConsole, line: scanner.Text()}) {
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	n.post(ctx, event{kind: eventConsoleClosed, err: err})
}

func (n *Node) acceptLoop(ctx context.Context) error {
	backoff := minAcceptBackoff
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if !n.post(ctx, event{kind: eventAcceptFailed, err: err}) {
				return nil
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			backoff = min(backoff*2, maxAcceptBackoff)
			continue
		}
		backoff = minAcceptBackoff

		if !n.post(ctx, event{kind: eventAccept, conn: conn}) {
			conn.Close()
			return nil
		}
	}
}

// watch starts the receive goroutine of a newly registered connection.
func (n *Node) watch(c *registry.Connection) {
	ctx := n.runCtx
	go func() {
		buf := make([]byte, n.cfg.BufferSize)
		for {
			r := peer.Receive(c, buf)
			if !n.post(ctx, event{kind: eventPeer, recv: r}) {
				return
			}
			if r.PeerClosed() {
				return
			}
		}
	}()
}

func (n *Node) loop(ctx context.Context) error {
	defer n.shutdown()
	for {
		var first event
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"function": "Node.loop",
				"reason":   context.Cause(ctx).Error(),
			}).Info("Event loop stopping")
			return nil
		case first = <-n.events:
		}

		batch := n.drain(first)
		for i, ev := range batch {
			if n.dispatch(ev) {
				discard(batch[i+1:])
				return nil
			}
		}
	}
}

// drain collects every event already pending behind first and orders them.
func (n *Node) drain(first event) []event {
	batch := []event{first}
	for {
		select {
		case ev := <-n.events:
			batch = append(batch, ev)
		default:
			orderBatch(batch)
			return batch
		}
	}
}

// dispatch handles one event and reports whether the loop must end.
func (n *Node) dispatch(ev event) bool {
	logrus.WithFields(logrus.Fields{
		"function": "Node.dispatch",
		"event":    ev.kind.String(),
	}).Debug("Dispatching event")

	switch ev.kind {
	case eventConsole:
		if n.interp.Execute(ev.line) {
			return true
		}
		n.out.Prompt()

	case eventConsoleClosed:
		fields := logrus.Fields{"function": "Node.dispatch"}
		if !errors.Is(ev.err, io.EOF) {
			fields["error"] = ev.err.Error()
		}
		logrus.WithFields(fields).Warn("Console input closed, still serving peers")

	case eventAccept:
		if err := n.handler.Accept(ev.conn); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Node.dispatch",
				"error":    err.Error(),
			}).Debug("Inbound connection not accepted")
		}

	case eventAcceptFailed:
		n.handler.AcceptFailed(ev.err)

	case eventPeer:
		n.handler.Deliver(ev.recv)
	}
	return false
}

// shutdown closes every connection and the listener once. Closing the
// listener is what ends the accept goroutine.
func (n *Node) shutdown() {
	n.shutdownOnce.Do(func() {
		if n.stop != nil {
			n.stop()
		}
		closed := n.handler.CloseAll()
		if n.listener != nil {
			n.listener.Close()
		}
		discard(n.pending())

		logrus.WithFields(logrus.Fields{
			"function":    "Node.shutdown",
			"connections": closed,
		}).Info("Node shut down")
	})
}

// pending empties the event queue without blocking.
func (n *Node) pending() []event {
	var evs []event
	for {
		select {
		case ev := <-n.events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

// discard releases sockets held by events that will never be dispatched.
func discard(evs []event) {
	for _, ev := range evs {
		if ev.kind == eventAccept && ev.conn != nil {
			ev.conn.Close()
		}
	}
}
